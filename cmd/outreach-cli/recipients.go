package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type recipient struct {
	ID            string `yaml:"id"`
	Email         string `yaml:"email"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	CustomerSince string `yaml:"customer_since"`
}

// readRecipients accepts a list of customers or a customer list response.
// JSON is read through the YAML decoder.
func readRecipients(r io.Reader) ([]map[string]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}

	var list []recipient
	var wrapped struct {
		Customers []recipient `yaml:"customers"`
	}
	if err := yaml.Unmarshal(raw, &wrapped); err == nil {
		list = wrapped.Customers
	} else if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("unreadable customers file: %w", err)
	}

	out := make([]map[string]string, 0, len(list))
	for _, rc := range list {
		m := map[string]string{
			"id":         rc.ID,
			"email":      rc.Email,
			"first_name": rc.FirstName,
			"last_name":  rc.LastName,
		}
		if rc.CustomerSince != "" {
			m["customer_since"] = rc.CustomerSince
		}
		out = append(out, m)
	}
	return out, nil
}
