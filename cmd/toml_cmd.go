package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/dzjyyds666/aqtoml/parse"
	"github.com/dzjyyds666/aqtoml/parse/toml"
	"github.com/dzjyyds666/aqtoml/pkg"
	"github.com/dzjyyds666/aqtoml/value"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/spf13/cobra"
)

type TomlParams struct {
	Find    string `json:"find"`    // 查找的key, 如 a.b.0.c
	Input   string `json:"input"`   // 输入文件路径
	Output  string `json:"output"`  // 输出文件地址, 为空时写到标准输出
	Format  string `json:"format"`  // 输出格式 toml|json|keys|dump
	Verbose bool   `json:"verbose"` // 打印调试日志
}

var params *TomlParams

var tomlCmd = &cobra.Command{
	Use:   "toml",
	Short: "toml parse tools",
	Run:   tomlRun,
}

func init() {
	params = &TomlParams{}
	tomlCmd.Flags().StringVarP(&params.Find, "find", "f", "", "find")
	tomlCmd.Flags().StringVarP(&params.Input, "input", "i", "", "input file path")
	tomlCmd.Flags().StringVarP(&params.Output, "output", "o", "", "output path")
	tomlCmd.Flags().StringVar(&params.Format, "format", "toml", "output format: toml, json, keys or dump")
	tomlCmd.Flags().BoolVar(&params.Verbose, "verbose", false, "log progress to stderr")
}

func tomlRun(cmd *cobra.Command, args []string) {
	if err := runToml(params, cmd.OutOrStdout()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func runToml(p *TomlParams, stdout io.Writer) error {
	logger := log.New(io.Discard, "aq: ", 0)
	if p.Verbose {
		logger.SetOutput(os.Stderr)
	}

	logger.Printf("parsing %s", p.Input)
	doc, err := parse.ParseFile(p.Input)
	if err != nil {
		return err
	}

	found, err := parse.Lookup(doc, p.Find)
	if err != nil {
		return err
	}
	if p.Find != "" {
		logger.Printf("found %s value at %s", found.TypeStr(), p.Find)
	}

	var buf bytes.Buffer
	if err := render(&buf, found, p.Format); err != nil {
		return err
	}

	if p.Output == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	logger.Printf("writing %d bytes to %s", buf.Len(), p.Output)
	return pkg.WriteFile(p.Output, buf.Bytes())
}

func render(w *bytes.Buffer, v value.Value, format string) error {
	switch format {
	case "", "toml":
		s, err := value.Format(v)
		if err != nil {
			return err
		}
		w.WriteString(s)
		if !v.IsTable() {
			w.WriteByte('\n')
		}
	case "json":
		var out any
		if err := v.TryInto(&out); err != nil {
			return err
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	case "keys":
		return renderKeys(w, v)
	case "dump":
		w.WriteString(spew.Sdump(v))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// renderKeys lists the direct children of a table or array.
func renderKeys(w io.Writer, v value.Value) error {
	table := tablewriter.NewTable(w, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header([]string{"key", "type", "value"})

	row := func(key string, child value.Value) error {
		n, err := toml.ToNode(child)
		if err != nil {
			return err
		}
		s, err := toml.FormatValue(n)
		if err != nil {
			return err
		}
		return table.Append([]string{key, child.TypeStr(), s})
	}

	switch {
	case v.IsTable():
		tbl, _ := v.AsTable()
		for k, child := range tbl.All() {
			if err := row(k, child); err != nil {
				return err
			}
		}
	case v.IsArray():
		arr, _ := v.AsArray()
		for i, child := range arr {
			if err := row(strconv.Itoa(i), child); err != nil {
				return err
			}
		}
	default:
		if err := row("", v); err != nil {
			return err
		}
	}
	return table.Render()
}
