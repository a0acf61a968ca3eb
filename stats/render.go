package stats

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/zintix-labs/blocklab/errs"
	"gopkg.in/yaml.v3"
)

// StatReportRender 定義輸出行為
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

// Json渲染
type JsonStatReportRender struct{}

func (jr *JsonStatReportRender) Write(w io.Writer, r *StatReport) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLStatReportRender struct{}

// Write 外層陣列維持 block 展開，最內層一維陣列輸出成 flow style：[a, b, c]
func (yr *YAMLStatReportRender) Write(w io.Writer, r *StatReport) error {
	return forceReadableList(w, r)
}

// 表格渲染（終端機用）
type TableStatReportRender struct {
	Used time.Duration
}

func (tr *TableStatReportRender) Write(w io.Writer, r *StatReport) error {
	r.StdOut(w, tr.Used)
	return nil
}

// RenderByName json | yaml | table
func RenderByName(name string, used time.Duration) (StatReportRender, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return &JsonStatReportRender{}, nil
	case "yaml", "yml":
		return &YAMLStatReportRender{}, nil
	case "", "table":
		return &TableStatReportRender{Used: used}, nil
	default:
		return nil, errs.Warnf("unknown report format %q", name)
	}
}

func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// styleReadableSequences 自頂向下：沒有子 sequence 的 sequence 改為 flow style
func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
			}
			styleReadableSequences(c)
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
	}
}
