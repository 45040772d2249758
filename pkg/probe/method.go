package probe

import (
	"fmt"
	"strings"
)

// Method names an existence check strategy.
type Method string

const (
	// MethodResolve downloads the artifact into the local repository.
	MethodResolve Method = "resolve"
	// MethodLocal looks for the artifact in the local repository.
	MethodLocal Method = "local"
	// MethodHTTPHead sends HEAD requests to the remote repositories.
	MethodHTTPHead Method = "httpHead"
)

// DefaultMethods is used when no method is configured.
var DefaultMethods = []Method{MethodResolve}

// ParseMethod parses a single method name. "http-head" is accepted as an
// alias of httpHead; names are case-insensitive.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resolve":
		return MethodResolve, nil
	case "local":
		return MethodLocal, nil
	case "httphead", "http-head":
		return MethodHTTPHead, nil
	}
	return "", fmt.Errorf("unknown existence check method %q (supported: resolve, local, httpHead)", s)
}

// ParseMethods parses a comma separated method list, keeping order.
// Empty entries are skipped; an empty list yields DefaultMethods.
func ParseMethods(csv string) ([]Method, error) {
	var methods []Method
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := ParseMethod(part)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if len(methods) == 0 {
		return DefaultMethods, nil
	}
	return methods, nil
}
