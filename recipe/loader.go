package recipe

import (
	"os"

	"github.com/soderasen-au/go-common/util"
	"gopkg.in/yaml.v3"
)

// LoadBundled reads a bundled yaml recipe file and validates it.
func LoadBundled(path string) (*Recipe, *util.Result) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, util.Error("ReadFile", err)
	}
	return ParseBundled(buf)
}

// ParseBundled parses yaml recipe bytes and validates the result.
func ParseBundled(buf []byte) (*Recipe, *util.Result) {
	var r Recipe
	if err := yaml.Unmarshal(buf, &r); err != nil {
		return nil, util.Error("UnmarshalYaml", err)
	}
	if res := r.Validate(); res != nil {
		return nil, res.With("Validate")
	}
	return &r, nil
}
