package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlessandroCarella/treescope/explanation"
	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/tree"
)

type traceCmdConfig struct {
	*rootCmdConfig
	explanationInput string
	instanceInput    string
}

func traceCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &traceCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Trace an instance through an explanation's tree",
		Long:  `Trace an encoded instance through the surrogate tree of an explanation payload and print the decision path of every layout with decoded split descriptions`,
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
			inst, err := config.instance(e)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			if err := trace(e, inst); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.explanationInput), "explanation", "e", "", "path to a file from which the explanation payload will be read and parsed as JSON (required)")
	cmd.PersistentFlags().StringVarP(&(config.instanceInput), "instance", "i", "", "encoded instance as inline JSON (defaults to the payload's encoded instance)")
	return cmd
}

func (tcc *traceCmdConfig) Validate() error {
	if tcc.explanationInput == "" {
		return fmt.Errorf("required explanation flag was not set")
	}
	return nil
}

func (tcc *traceCmdConfig) instance(e *explanation.Explanation) (feature.Instance, error) {
	if tcc.instanceInput == "" {
		if len(e.EncodedInstance) == 0 {
			return nil, fmt.Errorf("the payload carries no encoded instance, provide one with the instance flag")
		}
		tcc.Logf("Tracing the payload's encoded instance...")
		return e.EncodedInstance, nil
	}
	var inst feature.Instance
	if err := json.Unmarshal([]byte(tcc.instanceInput), &inst); err != nil {
		return nil, fmt.Errorf("parsing instance: %w", err)
	}
	return inst, nil
}

func loadExplanation(path string) (*explanation.Explanation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return explanation.Read(f)
}

func trace(e *explanation.Explanation, inst feature.Instance) error {
	t, err := tree.New(e.TreeNodes)
	if err != nil {
		return err
	}
	decoder := feature.NewDecoder(e.FeatureMapping.DatasetDescriptor)
	for _, kind := range tree.Kinds() {
		p, err := tree.For(kind)
		if err != nil {
			return err
		}
		path := p.TracePath(p.BuildHierarchy(t), inst)
		fmt.Printf("%s: %v\n", kind, path)
		for i := 0; i+1 < len(path); i++ {
			n := t.Node(path[i])
			left := *n.LeftChild == path[i+1]
			fmt.Printf("  node %d: %s\n", n.ID, decoder.DescribeSplit(n.FeatureName, *n.Threshold, left))
		}
		if last := t.Node(path[len(path)-1]); last.IsLeaf {
			fmt.Printf("  leaf %d: class %s\n", last.ID, last.ClassLabel)
		} else {
			fmt.Printf("  stopped at split %d: %s is not set on the instance\n", last.ID, last.FeatureName)
		}
	}
	return nil
}
