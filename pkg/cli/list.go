package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethpandaops/testoor/pkg/filter"
	"github.com/ethpandaops/testoor/pkg/suite"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// listNode is the yaml shape of the list command.
type listNode struct {
	Name     string      `yaml:"name"`
	Status   string      `yaml:"status"`
	Timeout  string      `yaml:"timeout,omitempty"`
	Tests    int         `yaml:"tests,omitempty"`
	Children []*listNode `yaml:"children,omitempty"`
}

func (a *app) list(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := a.root.Validate(); err != nil {
		return fmt.Errorf("validating suite %q: %w", a.root.Name(), err)
	}

	selected, err := filter.Select(a.root, cfg.Run.Filter)
	if err != nil {
		return fmt.Errorf("applying filter: %w", err)
	}

	tree := buildListNode(suite.Normalize(selected), cfg.Run.DefaultTimeout.String())

	switch a.opts.format {
	case "yaml":
		data, err := yaml.Marshal(tree)
		if err != nil {
			return fmt.Errorf("encoding list: %w", err)
		}

		_, err = a.out.Write(data)

		return err
	case "text":
		writeListNode(a.out, tree, 0)

		return nil
	default:
		return fmt.Errorf("unknown list format %q", a.opts.format)
	}
}

func buildListNode(s *suite.Suite, defaultTimeout string) *listNode {
	node := &listNode{
		Name:   s.Name(),
		Status: s.Status().String(),
		Tests:  s.RunnableCount(),
	}

	for _, child := range s.Children() {
		switch c := child.(type) {
		case *suite.Test:
			timeout := defaultTimeout
			if c.Timeout() > 0 {
				timeout = c.Timeout().String()
			}

			node.Children = append(node.Children, &listNode{
				Name:    c.Name(),
				Status:  c.Status().String(),
				Timeout: timeout,
			})
		case *suite.Suite:
			node.Children = append(node.Children, buildListNode(c, defaultTimeout))
		}
	}

	return node
}

func writeListNode(w io.Writer, node *listNode, depth int) {
	indent := strings.Repeat("  ", depth)

	if node.Timeout == "" {
		fmt.Fprintf(w, "%s%s (%d to run)\n", indent, node.Name, node.Tests)
	} else {
		fmt.Fprintf(w, "%s%s [%s, %s]\n", indent, node.Name, node.Status, node.Timeout)
	}

	for _, child := range node.Children {
		writeListNode(w, child, depth+1)
	}
}
