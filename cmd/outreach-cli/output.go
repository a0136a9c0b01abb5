package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

func (c *OutreachClient) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *OutreachClient) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out(), 0, 4, 2, ' ', 0)
}

// formatOutput writes data as json or yaml.
func (c *OutreachClient) formatOutput(data any) error {
	switch c.Format {
	case "json":
		encoder := json.NewEncoder(c.out())
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "yaml":
		encoder := yaml.NewEncoder(c.out())
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", c.Format)
	}
}
