/*
Package yaml provides methods to parse dataset descriptors, also
known as feature metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/AlessandroCarella/treescope/feature"
)

/*
ReadDescriptor takes a slice of bytes with a dataset descriptor in
YML and returns the parsed descriptor or an error.
The YML is expected to be an object with a numeric property and a
categorical property, each mapping feature names to their index and,
for categorical features, the list of distinct values they can take.
*/
func ReadDescriptor(md []byte) (feature.Descriptor, error) {
	var d feature.Descriptor
	err := yaml.Unmarshal(md, &d)
	if err != nil {
		return feature.Descriptor{}, fmt.Errorf("parsing yml descriptor: %w", err)
	}
	if len(d.Numeric) == 0 && len(d.Categorical) == 0 {
		return feature.Descriptor{}, fmt.Errorf("descriptor has no feature information")
	}
	return d, nil
}

/*
ReadDescriptorFromFile takes a filepath string, reads its contents
and uses ReadDescriptor to parse it and return the parsed descriptor
or an error. If the file indicated by the filepath cannot be opened
for reading an error will be returned.
*/
func ReadDescriptorFromFile(filepath string) (feature.Descriptor, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return feature.Descriptor{}, fmt.Errorf("reading descriptor yml file %s: %w", filepath, err)
	}
	d, err := ReadDescriptor(md)
	if err != nil {
		err = fmt.Errorf("parsing descriptor yml file %s: %w", filepath, err)
	}
	return d, err
}
