// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package printer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	apimodel "github.com/platform-engineering-labs/skyfed/internal/api/model"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

var images = apimodel.ImagesResponse{
	ProviderID: "provider-b",
	CloudName:  "east",
	Images: []model.ImageSummary{
		{ID: "img-debian-12", Name: "debian-12"},
		{ID: "img-ubuntu-24.04", Name: "ubuntu-24.04"},
	},
}

func TestMachineReadablePrinter(t *testing.T) {
	t.Run("prints json objects", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		err := NewMachineReadablePrinter[apimodel.ImagesResponse](buf, "json").Print(&images)
		require.NoError(t, err)
		expected := `{"providerId":"provider-b","cloudName":"east","images":[{"id":"img-debian-12","name":"debian-12"},{"id":"img-ubuntu-24.04","name":"ubuntu-24.04"}]}` + "\n"
		assert.JSONEq(t, expected, buf.String())
		assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
	})

	t.Run("prints yaml with json field names", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		err := NewMachineReadablePrinter[apimodel.ImagesResponse](buf, "yaml").Print(&images)
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
		assert.Equal(t, "provider-b", result["providerId"])
		assert.Len(t, result["images"], 2)
	})

	t.Run("applies a query", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		err := NewMachineReadablePrinter[apimodel.ImagesResponse](buf, "json").WithQuery("images.#.id").Print(&images)
		require.NoError(t, err)
		assert.JSONEq(t, `["img-debian-12","img-ubuntu-24.04"]`, buf.String())
	})

	t.Run("applies a query to yaml", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		err := NewMachineReadablePrinter[apimodel.ImagesResponse](buf, "yaml").WithQuery("images.0.name").Print(&images)
		require.NoError(t, err)
		assert.Equal(t, "debian-12\n", buf.String())
	})

	t.Run("query without a match", func(t *testing.T) {
		err := NewMachineReadablePrinter[apimodel.ImagesResponse](bytes.NewBuffer(nil), "json").WithQuery("flavors").Print(&images)
		assert.ErrorContains(t, err, "matched nothing")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := NewMachineReadablePrinter[apimodel.ImagesResponse](bytes.NewBuffer(nil), "toml").Print(&images)
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestHumanReadablePrinter(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	require.NoError(t, Print(buf, Options{Consumer: ConsumerHuman}, &images))
	assert.Contains(t, buf.String(), "img-ubuntu-24.04")

	assert.ErrorContains(t, NewHumanReadablePrinter(buf).Print(&struct{}{}), "unsupported type")
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"human", Options{Consumer: ConsumerHuman}, ""},
		{"machineJSON", Options{Consumer: ConsumerMachine, Schema: "json", Query: "images.#.id"}, ""},
		{"unknownConsumer", Options{Consumer: "robot"}, "output consumer"},
		{"badSchema", Options{Consumer: ConsumerMachine, Schema: "xml"}, "output schema"},
		{"queryForHumans", Options{Consumer: ConsumerHuman, Query: "images"}, "--query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
