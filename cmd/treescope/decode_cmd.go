package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AlessandroCarella/treescope/feature"
	"github.com/AlessandroCarella/treescope/feature/yaml"
)

type decodeCmdConfig struct {
	*rootCmdConfig
	metadataInput string
	instanceInput string
}

func decodeCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &decodeCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode an encoded instance back to original feature values",
		Long:  `Decode a one-hot encoded instance back to its original feature values using a dataset descriptor, reading the instance as JSON from STDIN or the instance flag`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			descriptor, err := yaml.ReadDescriptorFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			inst, err := config.instance()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			printDecoded(feature.NewDecoder(descriptor), inst)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with the dataset descriptor (required)")
	cmd.PersistentFlags().StringVarP(&(config.instanceInput), "instance", "i", "", "encoded instance as inline JSON (defaults to reading STDIN)")
	return cmd
}

func (dcc *decodeCmdConfig) Validate() error {
	if dcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (dcc *decodeCmdConfig) instance() (feature.Instance, error) {
	data := []byte(dcc.instanceInput)
	if dcc.instanceInput == "" {
		dcc.Logf("Reading encoded instance from STDIN...")
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
	}
	var inst feature.Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("parsing instance: %w", err)
	}
	return inst, nil
}

func printDecoded(decoder *feature.Decoder, inst feature.Instance) {
	decoded := decoder.DecodeInstance(inst)
	names := make([]string, 0, len(decoded))
	for name := range decoded {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %v\n", name, decoded[name])
	}
}
