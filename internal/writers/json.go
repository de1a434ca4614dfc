// internal/writers/json.go
package writers

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"fusionsite/pkg/api"
)

func init() {
	Register("json", writeJSON)
	Register("jsonl", writeJSONL)
	Register("yaml", writeYAML)
}

func writeJSON(w io.Writer, payload any, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeJSONL emits one compact line per list element; single values take
// one line.
func writeJSONL(w io.Writer, payload any, _ Options) error {
	enc := json.NewEncoder(w)
	each := func(n int, at func(int) any) error {
		for i := 0; i < n; i++ {
			if err := enc.Encode(at(i)); err != nil {
				return err
			}
		}
		return nil
	}
	switch v := payload.(type) {
	case []api.RunV1:
		return each(len(v), func(i int) any { return v[i] })
	case []api.EnzymeV1:
		return each(len(v), func(i int) any { return v[i] })
	case []api.SiteCountV1:
		return each(len(v), func(i int) any { return v[i] })
	case []api.DomesticationV1:
		return each(len(v), func(i int) any { return v[i] })
	case []api.OptimizeResultV1:
		return each(len(v), func(i int) any { return v[i] })
	case nil:
		return fmt.Errorf("jsonl: nil payload")
	}
	return enc.Encode(payload)
}

func writeYAML(w io.Writer, payload any, _ Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	return enc.Close()
}
