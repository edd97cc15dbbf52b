package routes

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	apierrors "github.com/yshengliao/antoree/pkg/errors"
)

var placeholderPattern = regexp.MustCompile(`:[A-Za-z][A-Za-z0-9_]*`)

// BuildURL replaces each ":key" in path with the string form of
// params[key]. Values are not escaped; a placeholder without a matching
// param is left as is.
func BuildURL(path string, params map[string]any) string {
	if len(params) == 0 {
		return path
	}

	// Longest keys first so ":id" never eats the prefix of ":idx"
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		path = strings.ReplaceAll(path, ":"+k, fmt.Sprint(params[k]))
	}
	return path
}

// BuildURLStrict is BuildURL that fails when a placeholder of the path
// template has no param. Substituted values may themselves contain ':'.
func BuildURLStrict(path string, params map[string]any) (string, error) {
	var missing []string
	for _, p := range Placeholders(path) {
		if _, ok := params[p[1:]]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s in %s", apierrors.ErrUnresolvedParam, strings.Join(missing, ", "), path)
	}
	return BuildURL(path, params), nil
}

// Placeholders lists the ":name" segments present in path
func Placeholders(path string) []string {
	return placeholderPattern.FindAllString(path, -1)
}

// BuildQueryString encodes query as "?k=v&..." with keys in sorted order.
// It returns "" for an empty query. Slice values repeat the key; nil
// values are skipped.
func BuildQueryString(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}

	values := url.Values{}
	for k, v := range query {
		switch val := v.(type) {
		case nil:
			continue
		case []string:
			for _, s := range val {
				values.Add(k, s)
			}
		case []any:
			for _, s := range val {
				values.Add(k, fmt.Sprint(s))
			}
		case []int:
			for _, s := range val {
				values.Add(k, fmt.Sprint(s))
			}
		default:
			values.Set(k, fmt.Sprint(val))
		}
	}

	encoded := values.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}
