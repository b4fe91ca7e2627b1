package classifier

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

var patternCache sync.Map

// ExtractParams applies the worker's param patterns to text. The first
// capture group is the value; without groups the whole match is used.
func ExtractParams(w worker.Descriptor, text string) map[string]interface{} {
	params := map[string]interface{}{}
	if len(w.ParamPatterns) == 0 || strings.TrimSpace(text) == "" {
		return params
	}
	names := make([]string, 0, len(w.ParamPatterns))
	for name := range w.ParamPatterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		re := compile(w.ParamPatterns[name])
		if re == nil {
			continue
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := m[0]
		if len(m) > 1 {
			val = m[1]
		}
		if val = strings.TrimSpace(val); val != "" {
			params[name] = val
		}
	}
	return params
}

func compile(pattern string) *regexp.Regexp {
	if v, ok := patternCache.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	patternCache.Store(pattern, re)
	return re
}
