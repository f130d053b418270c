// Package planview 把日志计划渲染为表格、YAML 或 JSON，供命令行查看。
//
// 远程 sink 的 token 在所有格式中都会脱敏。
package planview

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/ceyewan/logkit/logplan"
	"github.com/ceyewan/logkit/xerrors"
)

// 输出格式
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// ErrUnknownFormat 不支持的输出格式
var ErrUnknownFormat = xerrors.Wrap(xerrors.ErrInvalidInput, "planview: unknown format")

// View 计划的可序列化表示
type View struct {
	MinimumLevel   string            `json:"minimumLevel" yaml:"minimumLevel"`
	Sinks          []SinkView        `json:"sinks" yaml:"sinks"`
	LevelOverrides map[string]string `json:"levelOverrides,omitempty" yaml:"levelOverrides,omitempty"`
	Enrichment     map[string]string `json:"enrichment,omitempty" yaml:"enrichment,omitempty"`
}

// SinkView 单个 sink，只填写该类型使用的字段
type SinkView struct {
	Kind              string `json:"kind" yaml:"kind"`
	Path              string `json:"path,omitempty" yaml:"path,omitempty"`
	RollingInterval   string `json:"rollingInterval,omitempty" yaml:"rollingInterval,omitempty"`
	RetainedFileCount int    `json:"retainedFileCount,omitempty" yaml:"retainedFileCount,omitempty"`
	FileSizeLimitMB   int    `json:"fileSizeLimitMB,omitempty" yaml:"fileSizeLimitMB,omitempty"`
	Endpoint          string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Token             string `json:"token,omitempty" yaml:"token,omitempty"`
}

// FromPlan 转换计划，nil 计划返回零值
func FromPlan(p *logplan.Plan) View {
	if p == nil {
		return View{}
	}
	v := View{
		MinimumLevel: p.MinimumLevel.String(),
		Sinks:        make([]SinkView, 0, len(p.Sinks)),
	}
	for _, s := range p.Sinks {
		sv := SinkView{Kind: s.Kind().String()}
		switch sink := s.(type) {
		case logplan.FileSink:
			sv.Path = sink.Path
			sv.RollingInterval = sink.RollingInterval.String()
			sv.RetainedFileCount = sink.RetainedFileCount
			sv.FileSizeLimitMB = sink.FileSizeLimitMB
		case logplan.RemoteSink:
			sv.Endpoint = sink.Endpoint
			sv.Token = sink.MaskedToken()
		}
		v.Sinks = append(v.Sinks, sv)
	}
	if len(p.LevelOverrides) > 0 {
		v.LevelOverrides = make(map[string]string, len(p.LevelOverrides))
		for ns, level := range p.LevelOverrides {
			v.LevelOverrides[ns] = level.String()
		}
	}
	if len(p.Enrichment) > 0 {
		v.Enrichment = make(map[string]string, len(p.Enrichment))
		for k, val := range p.Enrichment {
			v.Enrichment[k] = val
		}
	}
	return v
}

// Render 按 format 输出计划，format 不区分大小写，空串等同于 table
func Render(w io.Writer, p *logplan.Plan, format string) error {
	v := FromPlan(p)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		_, err := io.WriteString(w, Table(v)+"\n")
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return xerrors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// Table 渲染为多段表格：最低级别、sink、级别覆盖、附加字段
//
// 最低级别单独成行，不用表格标题：go-pretty 会按表格宽度折行标题。
func Table(v View) string {
	sinks := make([][]string, 0, len(v.Sinks))
	for _, s := range v.Sinks {
		sinks = append(sinks, []string{s.Kind, sinkDetail(s)})
	}

	sections := []string{
		renderTable([]string{"Setting", "Value"}, [][]string{{"Minimum level", v.MinimumLevel}}),
		renderTable([]string{"Sink", "Settings"}, sinks),
	}
	if len(v.LevelOverrides) > 0 {
		sections = append(sections, renderTable([]string{"Namespace", "Level"}, sortedRows(v.LevelOverrides)))
	}
	if len(v.Enrichment) > 0 {
		sections = append(sections, renderTable([]string{"Property", "Value"}, sortedRows(v.Enrichment)))
	}
	return strings.Join(sections, "\n")
}

func sinkDetail(s SinkView) string {
	switch s.Kind {
	case logplan.FileKind.String():
		return s.Path + " (" + s.RollingInterval + ", keep " + strconv.Itoa(s.RetainedFileCount) +
			", " + strconv.Itoa(s.FileSizeLimitMB) + " MB)"
	case logplan.RemoteKind.String():
		return s.Endpoint + " token=" + s.Token
	default:
		return "stdout"
	}
}

func sortedRows(m map[string]string) [][]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, m[k]})
	}
	return rows
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
