// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ddddddO/gtree"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	apimodel "github.com/platform-engineering-labs/skyfed/internal/api/model"
	"github.com/platform-engineering-labs/skyfed/internal/cli/display"
	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

func newTable(buf *strings.Builder) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})))
}

func renderTable(header []any, rows [][]any) (string, error) {
	var buf strings.Builder
	table := newTable(&buf)
	table.Header(header...)
	if err := table.Bulk(rows); err != nil {
		return "", fmt.Errorf("error formatting table: %v", err)
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("error rendering table: %v", err)
	}
	return buf.String(), nil
}

func RenderHealth(h *apimodel.Health) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", display.Green("Agent is "+h.Status), display.Grey("(version "+h.Version+")"))
	fmt.Fprintf(&b, "%s %s\n", display.Gold("Provider:"), h.ProviderID)
	if h.Hostname != "" {
		fmt.Fprintf(&b, "%s %s %s\n", display.Gold("Host:"), h.Hostname, display.Grey(h.Platform))
	}
	fmt.Fprintf(&b, "%s %s\n", display.Gold("Uptime:"), h.Uptime)
	return b.String()
}

// RenderClouds draws the provider with its clouds and peers as a tree.
func RenderClouds(c *apimodel.CloudsResponse) (string, error) {
	root := gtree.NewRoot(display.LightBlue(c.ProviderID))

	clouds := root.Add(display.Gold("clouds"))
	if len(c.Clouds) == 0 {
		clouds.Add(display.Grey("none configured"))
	}
	for _, name := range c.Clouds {
		if name == c.DefaultCloud {
			clouds.Add(name + display.Grey(" (default)"))
			continue
		}
		clouds.Add(name)
	}

	peers := root.Add(display.Gold("peers"))
	if len(c.Peers) == 0 {
		peers.Add(display.Grey("none configured"))
	}
	for _, p := range c.Peers {
		peers.Add(p)
	}

	var buf strings.Builder
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func RenderImages(r *apimodel.ImagesResponse) (string, error) {
	title := display.Greyf("Images of cloud %s at %s\n", r.CloudName, r.ProviderID)
	if len(r.Images) == 0 {
		return title + display.Gold("No images found.\n"), nil
	}

	rows := make([][]any, len(r.Images))
	for i, img := range r.Images {
		rows[i] = []any{display.LightBlue(img.ID), img.Name}
	}
	table, err := renderTable([]any{display.LightBlue("ID"), "Name"}, rows)
	if err != nil {
		return "", err
	}
	return title + table, nil
}

func RenderImage(img *model.ImageInstance) (string, error) {
	root := gtree.NewRoot(display.LightBlue(img.Name))
	root.Add(display.Grey("id ") + img.ID)

	status := display.Green(img.Status)
	if img.Status != "active" {
		status = display.Gold(img.Status)
	}
	root.Add(display.Grey("status ") + status)
	root.Add(display.Grey("size ") + formatBytes(img.Size))
	root.Add(display.Greyf("requires %d GB disk, %d MB ram", img.MinDisk, img.MinRAM))
	if img.CloudName != "" {
		root.Add(display.Grey("cloud ") + img.CloudName)
	}

	var buf strings.Builder
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func RenderQuota(r *apimodel.QuotaResponse) (string, error) {
	title := display.Greyf("Quota in cloud %s at %s\n", r.CloudName, r.ProviderID)
	if r.Quota == nil {
		return title + display.Gold("No quota reported.\n"), nil
	}

	q := r.Quota
	line := func(name string, total, used, available int) []any {
		return []any{name, fmt.Sprintf("%d", total), fmt.Sprintf("%d", used), display.Usage(available, total)}
	}
	rows := [][]any{
		line("Instances", q.Total.Instances, q.Used.Instances, q.Available.Instances),
		line("vCPU", q.Total.VCPU, q.Used.VCPU, q.Available.VCPU),
		line("RAM (MB)", q.Total.RAM, q.Used.RAM, q.Available.RAM),
		line("Disk (GB)", q.Total.Disk, q.Used.Disk, q.Available.Disk),
		line("Networks", q.Total.Networks, q.Used.Networks, q.Available.Networks),
		line("Public IPs", q.Total.PublicIPs, q.Used.PublicIPs, q.Available.PublicIPs),
		line("Volumes", q.Total.Volumes, q.Used.Volumes, q.Available.Volumes),
	}
	table, err := renderTable([]any{"Resource", "Total", "Used", display.Green("Available")}, rows)
	if err != nil {
		return "", err
	}
	return title + table, nil
}

func RenderAudit(r *apimodel.AuditResponse) (string, error) {
	status := display.Green("enabled")
	if !r.Enabled {
		status = display.Gold("disabled")
	}
	title := display.Grey("Auditing is ") + status + "\n"
	if len(r.Records) == 0 {
		return title + display.Gold("No audit records found.\n"), nil
	}

	rows := make([][]any, len(r.Records))
	for i, rec := range r.Records {
		user := display.Grey("anonymous")
		if rec.UserID != "" {
			user = rec.UserID + display.Grey("@"+rec.IdentityProviderID)
		}
		rows[i] = []any{
			display.LightBlue(rec.Timestamp.Local().Format(time.DateTime)),
			string(rec.Operation),
			string(rec.ResourceType),
			user,
			formatOutcome(rec.Response),
		}
	}
	table, err := renderTable([]any{display.LightBlue("Time"), "Operation", "Resource", "User", "Outcome"}, rows)
	if err != nil {
		return "", err
	}
	return title + table, nil
}

const maxOutcomeWidth = 60

// formatOutcome shows failures in red. A failed operation records its error
// kind as the response.
func formatOutcome(response *string) string {
	if response == nil {
		return display.Grey("-")
	}
	out := *response
	if _, isKind := model.ParseErrorKind(out); isKind {
		return display.Red(out)
	}
	if len(out) > maxOutcomeWidth {
		out = out[:maxOutcomeWidth-3] + "..."
	}
	return out
}
