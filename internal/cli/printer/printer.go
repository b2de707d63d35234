// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package printer

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	apimodel "github.com/platform-engineering-labs/skyfed/internal/api/model"
	"github.com/platform-engineering-labs/skyfed/internal/cli/renderer"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

type Consumer string

const (
	ConsumerHuman   Consumer = "human"
	ConsumerMachine Consumer = "machine"
)

// Options select how a command prints its result.
type Options struct {
	Consumer Consumer
	Schema   string
	// Query is a gjson path applied to the machine output.
	Query string
}

func (o Options) Validate() error {
	switch o.Consumer {
	case ConsumerHuman:
		if o.Query != "" {
			return fmt.Errorf("--query needs the machine output consumer")
		}
	case ConsumerMachine:
		if o.Schema != "json" && o.Schema != "yaml" {
			return fmt.Errorf("output schema must be either 'json' or 'yaml' for machine consumer")
		}
	default:
		return fmt.Errorf("output consumer must be either 'human' or 'machine'")
	}
	return nil
}

// Print writes v for the consumer o selects.
func Print[T any](w io.Writer, o Options, v *T) error {
	if o.Consumer == ConsumerMachine {
		return NewMachineReadablePrinter[T](w, o.Schema).WithQuery(o.Query).Print(v)
	}
	return NewHumanReadablePrinter(w).Print(v)
}

type MachineReadablePrinter[T any] struct {
	w      io.Writer
	format string
	query  string
}

func NewMachineReadablePrinter[T any](w io.Writer, format string) *MachineReadablePrinter[T] {
	return &MachineReadablePrinter[T]{
		w:      w,
		format: format,
	}
}

// WithQuery narrows the output to what the gjson path selects.
func (p *MachineReadablePrinter[T]) WithQuery(query string) *MachineReadablePrinter[T] {
	p.query = query
	return p
}

func (p *MachineReadablePrinter[T]) Print(v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	if p.query != "" {
		result := gjson.GetBytes(data, p.query)
		if !result.Exists() {
			return fmt.Errorf("query %q matched nothing", p.query)
		}
		data = []byte(result.Raw)
	}

	switch p.format {
	case "json":
	case "yaml":
		// yaml goes through the json form so json tags and raw messages apply
		var intermediate any
		if err := json.Unmarshal(data, &intermediate); err != nil {
			return fmt.Errorf("convert to yaml: %w", err)
		}

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(intermediate); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		data = buf.Bytes()
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	_, err = p.w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

type HumanReadablePrinter struct {
	w io.Writer
}

func NewHumanReadablePrinter(w io.Writer) *HumanReadablePrinter {
	return &HumanReadablePrinter{
		w: w,
	}
}

func (p *HumanReadablePrinter) Print(v any) error {
	var output string
	var err error

	switch v := v.(type) {
	case *apimodel.Health:
		output = renderer.RenderHealth(v)
	case *apimodel.CloudsResponse:
		output, err = renderer.RenderClouds(v)
	case *apimodel.ImagesResponse:
		output, err = renderer.RenderImages(v)
	case *model.ImageInstance:
		output, err = renderer.RenderImage(v)
	case *apimodel.QuotaResponse:
		output, err = renderer.RenderQuota(v)
	case *apimodel.AuditResponse:
		output, err = renderer.RenderAudit(v)
	default:
		return fmt.Errorf("unsupported type: %T", v)
	}
	if err != nil {
		return fmt.Errorf("render %T: %w", v, err)
	}

	if _, err := io.WriteString(p.w, output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
