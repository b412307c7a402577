package assertions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/restlabs/restcheck/packages/http"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

type Evaluator struct {
	response *http.Response
	bodyJSON gjson.Result
	baseDir  string // Base directory for resolving schema file paths
}

func NewEvaluator(resp *http.Response) *Evaluator {
	return NewEvaluatorWithBaseDir(resp, "")
}

func NewEvaluatorWithBaseDir(resp *http.Response, baseDir string) *Evaluator {
	e := &Evaluator{
		response: resp,
		baseDir:  baseDir,
	}
	if resp.IsJSON() {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	return e
}

func (e *Evaluator) Evaluate(assertion *Assertion) *Result {
	result := &Result{
		Subject:  assertion.Subject,
		Operator: assertion.Operator.String(),
		Expected: assertion.Expected,
	}

	actual, found, err := e.getActualValue(assertion.Subject)
	if err != nil {
		result.Passed = false
		result.Message = err.Error()
		return result
	}
	result.Actual = actual

	// Existence operators consume the "found" bit directly.
	switch assertion.Operator {
	case OpExists:
		result.Passed = found
		if !found {
			result.Missing = true
			result.Message = fmt.Sprintf("%s did not resolve", assertion.Subject)
		}
		return result
	case OpNotExists:
		result.Passed = !found
		if found {
			result.Message = fmt.Sprintf("expected %s not to exist, got %v", assertion.Subject, actual)
		}
		return result
	}

	if !found {
		result.Passed = false
		result.Missing = true
		result.Message = fmt.Sprintf("%s did not resolve (missing field, header, or index)", assertion.Subject)
		return result
	}

	passed, msg := e.compare(actual, assertion.Operator, assertion.Expected)
	result.Passed = passed
	result.Message = msg

	// For length, show the computed length as the actual value
	if assertion.Operator == OpLength {
		result.Actual = computeLength(actual)
	}

	return result
}

func (e *Evaluator) getActualValue(subject string) (any, bool, error) {
	switch {
	case subject == "status":
		return e.response.StatusCode, true, nil
	case subject == "duration":
		return e.response.DurationMs(), true, nil
	case strings.HasPrefix(subject, "header"):
		headerName := strings.TrimPrefix(subject, "header")
		headerName = strings.TrimSpace(headerName)
		if headerName == "" {
			return e.response.Headers, true, nil
		}
		if !e.response.HasHeader(headerName) {
			return nil, false, nil
		}
		return e.response.Header(headerName), true, nil
	case strings.HasPrefix(subject, "body"):
		return e.getBodyValue(subject)
	case strings.HasPrefix(subject, "jsonpath"):
		path := strings.TrimPrefix(subject, "jsonpath")
		path = strings.TrimSpace(path)
		return e.getJSONPathValue(path)
	default:
		return e.getBodyValue("body." + subject)
	}
}

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := regexp.MustCompile(`\[(\d+)\]`).ReplaceAllString(path, ".$1")
	result = strings.TrimPrefix(result, ".")
	return result
}

func (e *Evaluator) getBodyValue(subject string) (any, bool, error) {
	if !e.bodyJSON.Exists() {
		return e.response.BodyString(), true, nil
	}

	path := strings.TrimPrefix(subject, "body")
	if path == "" {
		return e.bodyJSON.Value(), true, nil
	}
	path = strings.TrimPrefix(path, ".")

	path = convertBracketNotation(path)

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false, nil
	}
	return result.Value(), true, nil
}

func (e *Evaluator) getJSONPathValue(path string) (any, bool, error) {
	if !e.bodyJSON.Exists() {
		return nil, false, fmt.Errorf("response body is not JSON")
	}
	path = convertBracketNotation(path)
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false, nil
	}
	return result.Value(), true, nil
}

func (e *Evaluator) compare(actual any, op Operator, expected any) (bool, string) {
	switch op {
	case OpEquals:
		return e.equals(actual, expected)
	case OpNotEquals:
		passed, _ := e.equals(actual, expected)
		if passed {
			return false, fmt.Sprintf("expected not to equal %v", expected)
		}
		return true, ""
	case OpLength:
		return e.length(actual, expected)
	case OpContains:
		return e.contains(actual, expected)
	case OpMatches:
		return e.matches(actual, expected)
	case OpSchema:
		return e.schema(actual, expected)
	default:
		return false, fmt.Sprintf("unknown operator: %v", op)
	}
}

func (e *Evaluator) equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	// Sequences compare elementwise.
	if actualArr, ok := actual.([]any); ok {
		if expectedArr, ok := expected.([]any); ok {
			return e.equalsSlice(actualArr, expectedArr)
		}
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	actualStr := fmt.Sprintf("%v", actual)
	expectedStr := fmt.Sprintf("%v", expected)
	if actualStr == expectedStr {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

func (e *Evaluator) equalsSlice(actual, expected []any) (bool, string) {
	if len(actual) != len(expected) {
		return false, fmt.Sprintf("expected %d elements, got %d", len(expected), len(actual))
	}
	for i := range actual {
		if passed, _ := e.equals(actual[i], expected[i]); !passed {
			return false, fmt.Sprintf("element[%d]: expected %v, got %v", i, expected[i], actual[i])
		}
	}
	return true, ""
}

func (e *Evaluator) contains(actual, expected any) (bool, string) {
	actualStr := fmt.Sprintf("%v", actual)
	expectedStr := fmt.Sprintf("%v", expected)
	if strings.Contains(actualStr, expectedStr) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to contain '%v'", actual, expected)
}

func (e *Evaluator) matches(actual, expected any) (bool, string) {
	actualStr := fmt.Sprintf("%v", actual)
	pattern := fmt.Sprintf("%v", expected)

	pattern = strings.TrimPrefix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern: %v", err)
	}

	if re.MatchString(actualStr) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to match /%v/", actual, pattern)
}

// computeLength returns the length of a value, or -1 if length cannot be computed
func computeLength(actual any) int {
	switch v := actual.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		rv := reflect.ValueOf(actual)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			return rv.Len()
		default:
			return -1
		}
	}
}

func (e *Evaluator) length(actual, expected any) (bool, string) {
	expectedLen, ok := toInt(expected)
	if !ok {
		return false, fmt.Sprintf("expected length must be a number, got %v", expected)
	}

	actualLen := computeLength(actual)
	if actualLen == -1 {
		return false, fmt.Sprintf("cannot get length of %T", actual)
	}

	if actualLen == expectedLen {
		return true, ""
	}
	return false, fmt.Sprintf("expected length %d, got %d", expectedLen, actualLen)
}

func (e *Evaluator) schema(actual, expected any) (bool, string) {
	schemaPath := fmt.Sprintf("%v", expected)

	if !filepath.IsAbs(schemaPath) && e.baseDir != "" {
		schemaPath = filepath.Join(e.baseDir, schemaPath)
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return false, fmt.Sprintf("failed to read schema file: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		return false, fmt.Sprintf("failed to marshal actual value: %v", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewBytesLoader(actualJSON)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return false, fmt.Sprintf("schema validation error: %v", err)
	}

	if result.Valid() {
		return true, ""
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return false, fmt.Sprintf("schema validation failed: %s", strings.Join(errors, "; "))
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

func EvaluateAll(resp *http.Response, asserts []*Assertion) []*Result {
	return EvaluateAllWithBaseDir(resp, asserts, "")
}

func EvaluateAllWithBaseDir(resp *http.Response, asserts []*Assertion, baseDir string) []*Result {
	evaluator := NewEvaluatorWithBaseDir(resp, baseDir)
	results := make([]*Result, len(asserts))
	for i, a := range asserts {
		results[i] = evaluator.Evaluate(a)
	}
	return results
}
