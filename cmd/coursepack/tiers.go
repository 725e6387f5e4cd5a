package main

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-coursepack/content"
)

// decodeTiers accepts either a flat `path: tier` mapping or tier-keyed path lists:
//
//	production: [modules/intro.md]
//	preview:
//	  - Lenses/Draft.md
func decodeTiers(raw []byte) (content.TierMap, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode tier map: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tiers := content.TierMap{}
	for _, key := range keys {
		node := doc[key]
		switch node.Kind {
		case yaml.ScalarNode:
			tier, ok := content.ParseTier(node.Value)
			if !ok {
				return nil, fmt.Errorf("decode tier map: %s: unknown tier %q", key, node.Value)
			}
			tiers[cleanVaultPath(key)] = tier
		case yaml.SequenceNode:
			tier, ok := content.ParseTier(key)
			if !ok {
				return nil, fmt.Errorf("decode tier map: unknown tier %q", key)
			}
			var paths []string
			if err := node.Decode(&paths); err != nil {
				return nil, fmt.Errorf("decode tier map: %s: %w", key, err)
			}
			for _, p := range paths {
				tiers[cleanVaultPath(p)] = tier
			}
		default:
			return nil, fmt.Errorf("decode tier map: %s: expected a tier or a list of paths", key)
		}
	}
	return tiers, nil
}

func loadTiers(file string) (content.TierMap, error) {
	if strings.TrimSpace(file) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read tier map: %w", err)
	}
	return decodeTiers(raw)
}

func cleanVaultPath(p string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")), "./")
}
