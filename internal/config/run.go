package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/alejandrokeller/allan-plot/internal/allan"
	apperrors "github.com/alejandrokeller/allan-plot/internal/errors"
)

// Options are the raw run options as given on the command line.
type Options struct {
	InputCSV    string   `flag:"input_csv"`
	BatchFolder string   `flag:"batch_folder"`
	Interval    float64  `flag:"rate" validate:"gt=0"`
	Type        string   `flag:"type" validate:"oneof=normal overlapping"`
	Columns     []string `flag:"columns" validate:"min=1,dive,required"`
	Taus        string   `flag:"taus" validate:"oneof=all octave decade"`
	Delimiter   string   `flag:"delimiter" validate:"csv_delimiter"`
	OutputDir   string   `flag:"output_dir" validate:"required"`
}

// DefaultOptions returns options populated with the command line defaults.
func DefaultOptions() Options {
	return Options{
		Interval:  DefaultInterval,
		Type:      DefaultVariant,
		Taus:      DefaultTaus,
		Delimiter: DefaultDelimiter,
		OutputDir: DefaultOutputDir,
	}
}

// TargetMode says what a run processes.
type TargetMode int

const (
	// TargetNone means neither an input file nor a batch folder was given.
	TargetNone TargetMode = iota
	TargetFile
	TargetFolder
)

func (m TargetMode) String() string {
	switch m {
	case TargetFile:
		return "file"
	case TargetFolder:
		return "folder"
	default:
		return "none"
	}
}

// RunConfig is the resolved, read-only configuration of one run. It is built
// once by NewRunConfig and passed by value to every component.
type RunConfig struct {
	inputCSV    string
	batchFolder string
	interval    float64
	variant     allan.Variant
	taus        allan.TauPolicy
	delimiter   rune
	columns     []string
	outputDir   string
}

// NewRunConfig validates opts and resolves them into a RunConfig.
func NewRunConfig(opts Options) (RunConfig, error) {
	if err := validateOptions(opts); err != nil {
		return RunConfig{}, err
	}

	variant, err := allan.ParseVariant(opts.Type)
	if err != nil {
		return RunConfig{}, apperrors.NewConfigError("invalid --type", err)
	}
	taus, err := allan.ParseTauPolicy(opts.Taus)
	if err != nil {
		return RunConfig{}, apperrors.NewConfigError("invalid --taus", err)
	}
	delim, _ := utf8.DecodeRuneInString(opts.Delimiter)

	return RunConfig{
		inputCSV:    opts.InputCSV,
		batchFolder: opts.BatchFolder,
		interval:    opts.Interval,
		variant:     variant,
		taus:        taus,
		delimiter:   delim,
		columns:     slices.Clone(opts.Columns),
		outputDir:   opts.OutputDir,
	}, nil
}

// InputCSV returns the single input file, if any.
func (c RunConfig) InputCSV() string { return c.inputCSV }

// BatchFolder returns the batch folder, if any.
func (c RunConfig) BatchFolder() string { return c.batchFolder }

// Interval returns the sampling interval in seconds.
func (c RunConfig) Interval() float64 { return c.interval }

// Rate returns the sampling rate in samples per second.
func (c RunConfig) Rate() float64 { return 1.0 / c.interval }

// Variant returns the estimator variant.
func (c RunConfig) Variant() allan.Variant { return c.variant }

// TauPolicy returns the tau spacing policy.
func (c RunConfig) TauPolicy() allan.TauPolicy { return c.taus }

// Delimiter returns the input field delimiter.
func (c RunConfig) Delimiter() rune { return c.delimiter }

// Columns returns a copy of the requested column names, in request order.
func (c RunConfig) Columns() []string { return slices.Clone(c.columns) }

// OutputDir returns the directory receiving all artifacts.
func (c RunConfig) OutputDir() string { return c.outputDir }

// Target resolves what to process. An input file wins over a batch folder.
func (c RunConfig) Target() (TargetMode, string) {
	switch {
	case c.inputCSV != "":
		return TargetFile, c.inputCSV
	case c.batchFolder != "":
		return TargetFolder, c.batchFolder
	default:
		return TargetNone, ""
	}
}

var optionsValidator = newOptionsValidator()

func newOptionsValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("flag"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("csv_delimiter", func(fl validator.FieldLevel) bool {
		return validDelimiter(fl.Field().String())
	})
	return v
}

// validDelimiter accepts exactly one rune that encoding/csv can split on.
func validDelimiter(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && r != '"' && r != '\r' && r != '\n'
}

func validateOptions(opts Options) error {
	err := optionsValidator.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewConfigError("invalid options", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return apperrors.NewConfigError(strings.Join(msgs, "; "), nil)
}

func describeFieldError(fe validator.FieldError) string {
	name := "--" + fe.Field()
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s needs at least %s value(s)", name, fe.Param())
	case "required":
		return fmt.Sprintf("%s must not be empty", name)
	case "csv_delimiter":
		return fmt.Sprintf("%s must be a single character other than a quote or newline, got %q", name, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
