package output

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/certifiedcode/memberguard/cli/pkg/config"
	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Writer receives all command output. Tests swap it for a buffer.
var Writer io.Writer = color.Output

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// JSON reports whether structured output was requested
func JSON() bool {
	return GetOutputFormat() == FormatJSON
}

// PrintJSON writes data as indented JSON
func PrintJSON(data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Writer, string(out))
	return err
}

// PrintList prints rows under headers, or raw items as JSON when requested
func PrintList(items interface{}, headers []string, rows [][]string) error {
	if JSON() {
		return PrintJSON(items)
	}
	printTable(headers, rows)
	return nil
}

// PrintRecord outputs a single record in the configured format. Keys print sorted.
func PrintRecord(record map[string]interface{}) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return PrintJSON(record)
	case FormatTable:
		rows := make([][]string, 0, len(record))
		for _, k := range sortedKeys(record) {
			rows = append(rows, []string{k, fmt.Sprintf("%v", record[k])})
		}
		printTable([]string{"Field", "Value"}, rows)
		return nil
	default:
		bold := color.New(color.Bold)
		for _, k := range sortedKeys(record) {
			bold.Fprint(Writer, k+": ")
			fmt.Fprintf(Writer, "%v\n", record[k])
		}
		return nil
	}
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Writer, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Writer, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Writer, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Writer, "Warning: "+msg+"\n", args...)
}

// OnOff renders a toggle state
func OnOff(enabled bool) string {
	if enabled {
		return color.GreenString("on")
	}
	return color.RedString("off")
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

func sortedKeys(record map[string]interface{}) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
