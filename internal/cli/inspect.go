package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/skein-dev/skein/internal/ir"
)

// inspectNode mirrors the wire node record for read-only display.
type inspectNode struct {
	TypeKey string            `json:"type_key"`
	ReprStr string            `json:"repr_str"`
	ReprB64 string            `json:"repr_b64"`
	Attrs   map[string]string `json:"attrs"`
	Keys    []string          `json:"keys"`
	Data    []int             `json:"data"`
}

type inspectDoc struct {
	Root        int               `json:"root"`
	Nodes       []inspectNode     `json:"nodes"`
	B64NDArrays []string          `json:"b64ndarrays"`
	Attrs       map[string]string `json:"attrs"`
}

// NewInspectCommand creates the inspect command: print the node
// table of a saved graph without reconstructing it, plus a summary
// line for each embedded tensor. With --verbose, scalar float tensors
// also get a preview of their first elements; other dtypes do not.
func NewInspectCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the node table of a saved graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var doc inspectDoc
			if err := json.Unmarshal(body, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "root: %d, nodes: %d, tensors: %d, version: %s\n",
				doc.Root, len(doc.Nodes), len(doc.B64NDArrays), doc.Attrs["tvm_version"])
			for i, n := range doc.Nodes {
				key := n.TypeKey
				if key == "" {
					key = "None"
				}
				fmt.Fprintf(out, "%4d  %-16s", i, key)
				switch {
				case n.ReprStr != "":
					fmt.Fprintf(out, " repr=%q", n.ReprStr)
				case n.ReprB64 != "":
					fmt.Fprintf(out, " repr_b64(%d bytes)", base64.StdEncoding.DecodedLen(len(n.ReprB64)))
				case len(n.Keys) > 0:
					fmt.Fprintf(out, " keys=%d", len(n.Keys))
				case len(n.Data) > 0:
					fmt.Fprintf(out, " children=%d", len(n.Data))
				case len(n.Attrs) > 0:
					fmt.Fprintf(out, " attrs=%d", len(n.Attrs))
				}
				fmt.Fprintln(out)
			}
			for i, blob := range doc.B64NDArrays {
				if err := printTensor(out, i, blob, opts.Verbose); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

func printTensor(out io.Writer, idx int, blob string, verbose bool) error {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("b64ndarrays[%d]: %w", idx, err)
	}
	a, err := ir.DecodeNDArray(raw)
	if err != nil {
		return fmt.Errorf("b64ndarrays[%d]: %w", idx, err)
	}
	fmt.Fprintf(out, "tensor %d: %s%v on %s, %d bytes\n", idx, a.DType, a.Shape, a.Device, len(a.Data))
	if !verbose || a.DType.Code != ir.DTypeFloat || a.DType.Lanes != 1 {
		return nil
	}
	// preview the first few elements
	n := a.NumElements()
	if n > 8 {
		n = 8
	}
	for i := int64(0); i < n; i++ {
		f, err := a.Float64At(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  [%d] = %g\n", i, f)
	}
	return nil
}
