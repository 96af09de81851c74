package command

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"rhizo-cli/internal/logic/composer"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/logic/reader"
	"rhizo-cli/internal/tools"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func encodingNames(es []domain.Encoding) string {
	names := make([]string, 0, len(es))
	for _, e := range es {
		names = append(names, e.String())
	}
	return strings.Join(names, ", ")
}

func appendArguments(t table.Writer, args []domain.Argument) {
	if len(args) == 0 {
		t.AppendRow(table.Row{"Arguments", "-"})
		return
	}
	for i, a := range args {
		label := ""
		if i == 0 {
			label = "Arguments"
		}
		t.AppendRow(table.Row{label, fmt.Sprintf("%s: %s", a.Name, a.Type)})
	}
}

func cacheText(c domain.CacheConfig) string {
	if !c.Cacheable {
		return "no"
	}
	if c.TTLMs == nil {
		return "yes"
	}
	return fmt.Sprintf("yes (ttl %d ms)", *c.TTLMs)
}

func renderRoute(out io.Writer, view *reader.RouteView) {
	t := newTable(out)
	r := view.Route
	t.AppendRow(table.Row{"Route", r.Name})
	t.AppendRow(table.Row{"Address", view.Address.String()})
	t.AppendRow(table.Row{"Module CID", r.ModuleCID.String()})
	t.AppendRow(table.Row{"Encodings", encodingNames(r.Encodings)})
	appendArguments(t, r.Arguments)
	t.AppendRow(table.Row{"Cache", cacheText(r.CacheConfig)})
	t.Render()
}

// contentText 可读文本原样展示，否则以十六进制展示
func contentText(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	if utf8.Valid(b) && !strings.ContainsRune(string(b), 0) {
		return string(b)
	}
	return "0x" + hex.EncodeToString(b)
}

func renderSocb(out io.Writer, view *reader.SocbView) {
	t := newTable(out)
	t.AppendRow(table.Row{"SOCB", view.Address.Seed})
	t.AppendRow(table.Row{"PDA", view.Address.String()})
	t.AppendRow(table.Row{"Owner", view.Bytes.OwnerPubkey.String()})
	t.AppendRow(table.Row{"Size", len(view.Bytes.Inner)})
	t.AppendRow(table.Row{"Contents", contentText(view.Bytes.Inner)})
	t.Render()
}

func renderIndex(out io.Writer, c reader.Collection, idx *domain.DeveloperIndex) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", strings.ToUpper(c.String())})
	for i, n := range idx.Names {
		t.AppendRow(table.Row{i + 1, n})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d total", len(idx.Names))})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()
}

func renderRouteConfig(out io.Writer, r domain.Route) {
	t := newTable(out)
	t.AppendRow(table.Row{"Route", r.Name})
	t.AppendRow(table.Row{"Encodings", encodingNames(r.Encodings)})
	appendArguments(t, r.Arguments)
	t.AppendRow(table.Row{"Cache", cacheText(r.CacheConfig)})
	t.Render()
}

func renderResult(out io.Writer, res *composer.Result) {
	t := newTable(out)
	t.AppendRow(table.Row{"Operation", string(res.Estimate.Operation)})
	t.AppendRow(table.Row{"Target", res.Estimate.Target})
	t.AppendRow(table.Row{"Signature", res.Signature})
	t.AppendRow(table.Row{"Fee", tools.FormatSol(res.Estimate.FeeLamports) + " SOL"})
	if res.Estimate.RentLamports > 0 {
		t.AppendRow(table.Row{"Rent", tools.FormatSol(res.Estimate.RentLamports) + " SOL"})
	}
	if res.Estimate.RefundLamports > 0 {
		t.AppendRow(table.Row{"Refund", tools.FormatSol(res.Estimate.RefundLamports) + " SOL"})
	}
	t.Render()
}
