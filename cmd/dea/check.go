package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/ANU-WALD/dea-course/grade"
)

func (c *config) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check uid answer",
		Short: "Submit an answer for checking",
		Long:  "Submit an answer for checking. The answer is a JSON value; arrays of numbers are submitted as arrays.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ans, err := parseAnswer(args[1])
			if err != nil {
				return err
			}
			options := []grade.ClientOption{
				grade.WithURL(c.viper.GetString("url")),
				grade.WithLogger(c.logger),
			}
			if user := c.viper.GetString("user"); user != "" {
				options = append(options, grade.WithUser(user))
			}
			response, err := grade.NewClient(options...).Check(cmd.Context(), args[0], ans)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), response)
			return nil
		},
	}
	cmd.Flags().String("url", grade.DefaultURL, "grader URL")
	cmd.Flags().String("user", "", "user, default $"+grade.UserEnvVar)
	_ = c.viper.BindPFlag("url", cmd.Flags().Lookup("url"))
	_ = c.viper.BindPFlag("user", cmd.Flags().Lookup("user"))
	return cmd
}

// parseAnswer parses s as a JSON value. Integers become int64s, other
// numbers float64s, and arrays whose elements are all numbers become
// []int64 or []float64. Rectangular arrays of such arrays become
// [][]int64, [][]float64, and so on. Strings that are not valid JSON are
// returned unchanged.
func parseAnswer(s string) (any, error) {
	decoder := json.NewDecoder(bytes.NewBufferString(s))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil || decoder.More() {
		return s, nil
	}
	return answerValue(value)
}

func answerValue(value any) (any, error) {
	switch value := value.(type) {
	case json.Number:
		return numberValue(value)
	case []any:
		values := make([]any, len(value))
		allInts, allNumbers := true, true
		for i, element := range value {
			v, err := answerValue(element)
			if err != nil {
				return nil, err
			}
			values[i] = v
			switch v.(type) {
			case int64:
			case float64:
				allInts = false
			default:
				allInts, allNumbers = false, false
			}
		}
		switch {
		case len(values) == 0:
			return values, nil
		case !allNumbers:
			return nestedArray(values), nil
		case allInts:
			ints := make([]int64, len(values))
			for i, v := range values {
				ints[i] = v.(int64)
			}
			return ints, nil
		default:
			floats := make([]float64, len(values))
			for i, v := range values {
				switch v := v.(type) {
				case int64:
					floats[i] = float64(v)
				case float64:
					floats[i] = v
				}
			}
			return floats, nil
		}
	default:
		return value, nil
	}
}

// nestedArray returns values as a slice of numeric arrays if every value is
// a numeric array of the same type and length. Otherwise it returns values.
func nestedArray(values []any) any {
	first := reflect.ValueOf(values[0])
	if first.Kind() != reflect.Slice || first.Type() == reflect.TypeFor[[]any]() {
		return values
	}
	result := reflect.MakeSlice(reflect.SliceOf(first.Type()), len(values), len(values))
	for i, v := range values {
		value := reflect.ValueOf(v)
		if !value.IsValid() || value.Type() != first.Type() || value.Len() != first.Len() {
			return values
		}
		result.Index(i).Set(value)
	}
	return result.Interface()
}

func numberValue(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	return n.Float64()
}
