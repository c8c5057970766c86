/*
Copyright © 2024 the scidata authors.
This file is part of scidata.

scidata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

scidata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with scidata.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package scidatautil holds the command-line interface of the scidata
// tool.
package scidatautil

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"

	"github.com/heliomodel/scidata"
	"github.com/heliomodel/scidata/fileio"
	"github.com/heliomodel/scidata/schema"
	"github.com/heliomodel/scidata/timeseries"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to scidata.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel sets the logging verbosity: debug, info, warn or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "schema",
			usage: `
              schema specifies a TOML file overriding the built-in metadata
              attribute schema used during validation.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "stats",
			usage: `
              stats specifies whether to print per-measurement minimum, maximum
              and mean values.`,
			shorthand:  "s",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{describeCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SCIDATA")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch d := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, d, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, d, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, d, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, d, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(describeCmd)
	Root.AddCommand(validateCmd)
	Root.AddCommand(convertCmd)
}

// setConfig finds and reads in the configuration file, if there is
// one, and configures logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("scidata: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("scidata: %v", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "scidata",
	Short: "A container tool for heliophysics time-series files.",
	Long: `scidata reads, converts and validates heliophysics time-series data
in CDF, NetCDF and FITS formats. The format is selected by file extension.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SCIDATA_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of scidata.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("scidata v%s\n", scidata.Version)
	},
	DisableAutoGenTag: true,
}

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Summarize a time-series data file.",
	Long: `describe loads the given file and prints its global attributes, shape
and the columns with their units. With --stats, per-measurement minimum,
maximum and mean values are included.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Describe(cmd, args[0], Cfg.GetBool("stats"))
	},
	DisableAutoGenTag: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]...",
	Short: "Check data files for structural conformance.",
	Long: `validate runs the format-specific validator over each given file and
prints its findings. The exit status is non-zero if any file has an
error-severity finding.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema(Cfg.GetString("schema"))
		if err != nil {
			return err
		}
		nErrors := 0
		for _, file := range expandStringSlice(args) {
			n, err := ValidateFile(cmd, file, s)
			if err != nil {
				return err
			}
			nErrors += n
		}
		if nErrors > 0 {
			return fmt.Errorf("scidata: validation found %d error(s)", nErrors)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert a data file between formats.",
	Long: `convert loads the input file and saves it to the output path; both
formats are selected by file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Convert(args[0], args[1])
	},
	DisableAutoGenTag: true,
}

// Describe loads file and prints a summary to the command output.
func Describe(cmd *cobra.Command, file string, stats bool) error {
	log.WithField("file", file).Info("reading data file")
	sd, err := scidata.Read(file)
	if err != nil {
		return err
	}
	cmd.Print(sd.String())
	start, end := sd.TimeRange()
	cmd.Printf("Time range: %s – %s\n", start.UTC(), end.UTC())
	if stats {
		us := sd.Units()
		sd.Each(func(name string, q *timeseries.Quantity) {
			if len(q.Data) == 0 {
				return
			}
			mean := floats.Sum(q.Data) / float64(len(q.Data))
			cmd.Printf("%s [%s]: min=%g max=%g mean=%g\n",
				name, us[name], floats.Min(q.Data), floats.Max(q.Data), mean)
		})
	}
	return nil
}

// ValidateFile validates one file, printing each finding, and returns
// the number of error-severity findings.
func ValidateFile(cmd *cobra.Command, file string, s *schema.Schema) (int, error) {
	f, err := fileio.FormatForPath(file)
	if err != nil {
		return 0, err
	}
	issues, err := validatorWithSchema(f, s).ValidateFile(file)
	if err != nil {
		return 0, err
	}
	nErrors := 0
	for _, issue := range issues {
		cmd.Printf("%s: %s\n", file, issue)
		if issue.Severity == fileio.SeverityError {
			nErrors++
		}
	}
	log.WithFields(logrus.Fields{"file": file, "issues": len(issues)}).Info("validated")
	return nErrors, nil
}

// Convert loads input and saves it to output, dispatching both
// handlers by extension.
func Convert(input, output string) error {
	sd, err := scidata.Read(input)
	if err != nil {
		return err
	}
	outFormat, err := fileio.FormatForPath(output)
	if err != nil {
		return err
	}
	if err := checkOutputFile(output); err != nil {
		return err
	}
	sd.SetHandler(outFormat.Handler())
	log.WithFields(logrus.Fields{"input": input, "output": output}).Info("converting")
	return sd.Save(output)
}

// loadSchema loads a schema override file, or the built-in schema if
// the path is empty.
func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(os.ExpandEnv(path))
}

// validatorWithSchema returns the format's validator configured with
// the given schema.
func validatorWithSchema(f fileio.Format, s *schema.Schema) fileio.Validator {
	switch f {
	case fileio.FormatCDF:
		return &fileio.CDFValidator{Schema: s}
	case fileio.FormatNetCDF:
		return &fileio.NetCDFValidator{Schema: s}
	default:
		return &fileio.FITSValidator{Schema: s}
	}
}
