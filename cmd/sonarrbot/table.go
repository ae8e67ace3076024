package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sonarrbot/internal/acl"
)

// renderUserTable lays out access records as a rounded table, ids
// right-aligned.
func renderUserTable(allowed, revoked []acl.Record) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Name", "Status"})

	appendRecords := func(records []acl.Record, status string) {
		for _, record := range records {
			tw.AppendRow(table.Row{
				strconv.FormatInt(record.ID, 10),
				record.DisplayName(),
				status,
			})
		}
	}
	appendRecords(allowed, "allowed")
	appendRecords(revoked, "revoked")

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
	})

	return tw.Render()
}
