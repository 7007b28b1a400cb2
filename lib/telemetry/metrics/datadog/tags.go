package datadog

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

func getTags(tags any) []string {
	// Yaml parses lists as a sequence, so we'll unpack it again with the same library.
	if tags == nil {
		return []string{}
	}

	yamlBytes, err := yaml.Marshal(tags)
	if err != nil {
		return []string{}
	}

	var retTagStrings []string
	if err = yaml.Unmarshal(yamlBytes, &retTagStrings); err != nil {
		return []string{}
	}

	return retTagStrings
}

// toDatadogTags returns `key:value` pairs sorted so the output is stable.
func toDatadogTags(tags map[string]string) []string {
	retTags := make([]string, 0, len(tags))
	for key, val := range tags {
		retTags = append(retTags, fmt.Sprintf("%s:%s", key, val))
	}

	slices.Sort(retTags)
	return retTags
}
