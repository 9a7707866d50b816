// Package config loads the engine's optional resource limits from YAML.
// Grounded on aretext-aretext's config package, which loads a user ruleset
// from a YAML file with documented defaults when the file is absent.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// DefaultMaxExpressionDepth bounds the parser's expression-tree depth and
// the validator's rule-graph DFS (section 5).
const DefaultMaxExpressionDepth = 100

// EngineLimits are the resource limits of section 5. EvaluationTimeout of
// zero means no wall-clock budget is enforced.
type EngineLimits struct {
	MaxExpressionDepth int           `yaml:"max_expression_depth"`
	EvaluationTimeout  time.Duration `yaml:"evaluation_timeout"`
}

// Default returns the hardcoded defaults of spec.md §5: depth 100, no
// timeout.
func Default() EngineLimits {
	return EngineLimits{MaxExpressionDepth: DefaultMaxExpressionDepth}
}

// Load reads EngineLimits from a YAML file at path. A missing file is not
// an error — it returns Default() — since the limits are optional.
func Load(path string) (EngineLimits, error) {
	limits := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return limits, nil
		}
		return limits, errs.Wrap(errs.Engine, "", model.Span{}, "check the config file path and permissions", err)
	}
	if err := yaml.Unmarshal(data, &limits); err != nil {
		return EngineLimits{}, errs.Wrap(errs.Engine, "", model.Span{}, "fix the YAML syntax in the engine limits file", err)
	}
	if limits.MaxExpressionDepth <= 0 {
		limits.MaxExpressionDepth = DefaultMaxExpressionDepth
	}
	return limits, nil
}
