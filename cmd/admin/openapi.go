package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

var (
	openapiBase     string
	openapiRevision string
)

var openapiCheckCmd = &cobra.Command{
	Use:   "openapi-check",
	Short: "Fail when a revised swagger document drops paths, operations or responses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		base, err := loadSpec(openapiBase)
		if err != nil {
			return fmt.Errorf("load base spec: %w", err)
		}
		revision, err := loadSpec(openapiRevision)
		if err != nil {
			return fmt.Errorf("load revision spec: %w", err)
		}

		if issues := compare(base, revision); len(issues) > 0 {
			for _, issue := range issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "- %s\n", issue)
			}
			return fmt.Errorf("backward compatibility check failed with %d issue(s)", len(issues))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "openapi compatibility check passed")
		return nil
	},
}

func init() {
	openapiCheckCmd.Flags().StringVar(&openapiBase, "base", "", "Base swagger document (YAML or JSON)")
	openapiCheckCmd.Flags().StringVar(&openapiRevision, "revision", "", "Revised swagger document (YAML or JSON)")
	_ = openapiCheckCmd.MarkFlagRequired("base")
	_ = openapiCheckCmd.MarkFlagRequired("revision")
}

// apiSpec maps path -> method -> response codes.
type apiSpec map[string]map[string]map[string]struct{}

type specDoc struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

type specOperation struct {
	Responses map[string]yaml.Node `yaml:"responses"`
}

func loadSpec(path string) (apiSpec, error) {
	// #nosec G304: path comes from CLI flags in an operator tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSpec(raw)
}

// parseSpec reads the paths of a swagger document. JSON is valid YAML, so
// both the generated swagger.json and swagger.yaml are accepted.
func parseSpec(raw []byte) (apiSpec, error) {
	var doc specDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	spec := make(apiSpec, len(doc.Paths))
	for p, methods := range doc.Paths {
		ops := make(map[string]map[string]struct{})
		for method, node := range methods {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[method]; !ok {
				continue
			}
			var op specOperation
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), p, err)
			}
			codes := make(map[string]struct{}, len(op.Responses))
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					codes[code] = struct{}{}
				}
			}
			ops[method] = codes
		}
		if len(ops) > 0 {
			spec[p] = ops
		}
	}
	return spec, nil
}

func compare(base, revision apiSpec) []string {
	var issues []string

	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseCodes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseCodes {
				if _, ok := revCodes[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
