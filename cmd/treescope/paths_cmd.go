package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

type pathsCmdConfig struct {
	*rootCmdConfig
	explanationInput string
	kind             string
}

func pathsCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &pathsCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Enumerate all root-to-leaf paths of an explanation's tree",
		Long:  `Enumerate every root-to-leaf path of the surrogate tree in an explanation payload, one line per path with the leaf's class label`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			e, err := loadExplanation(config.explanationInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			if err := printPaths(e.TreeNodes, tree.Kind(config.kind)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.explanationInput), "explanation", "e", "", "path to a file from which the explanation payload will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.kind), "kind", "k", string(tree.KindClassic), "tree layout kind to enumerate with (classic, blocks or spawn)")
	return cmd
}

func (pcc *pathsCmdConfig) Validate() error {
	if pcc.explanationInput == "" {
		return fmt.Errorf("required explanation flag was not set")
	}
	if !tree.Kind(pcc.kind).Valid() {
		return fmt.Errorf("invalid kind %q", pcc.kind)
	}
	return nil
}

func printPaths(nodes []tree.Node, kind tree.Kind) error {
	t, err := tree.New(nodes)
	if err != nil {
		return err
	}
	p, err := tree.For(kind)
	if err != nil {
		return err
	}
	for _, path := range p.AllPaths(p.BuildHierarchy(t)) {
		ids := make([]string, len(path))
		for i, id := range path {
			ids[i] = fmt.Sprintf("%d", id)
		}
		label := feature.Value("?")
		if leaf := t.Node(path[len(path)-1]); leaf != nil && leaf.ClassLabel != "" {
			label = leaf.ClassLabel
		}
		fmt.Printf("%s -> %s\n", strings.Join(ids, " "), label)
	}
	return nil
}
