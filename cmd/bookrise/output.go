package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
)

type OutputFormat string

// Set implements pflag.Value.
func (o *OutputFormat) Set(v string) error {
	switch v {
	case string(OutputTable):
		*o = OutputTable
	case string(OutputJSON):
		*o = OutputJSON
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, OutputTable, OutputJSON)
	}
	return nil
}

// String implements pflag.Value.
func (o *OutputFormat) String() string {
	if o == nil {
		return ""
	}
	return string(*o)
}

// Type implements pflag.Value.
func (o *OutputFormat) Type() string {
	return "OutputFormat"
}

var (
	_ pflag.Value = (*OutputFormat)(nil)
)

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
)

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("json.Encode > %w", err)
	}
	return nil
}
