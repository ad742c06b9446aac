package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ErrFmtHandler は slog の error 属性を展開するハンドラ。
// cockroachdb/errors のスタックトレースに加え、exmax の型付きエラーであれば
// 型名 (error.type)、エラーコード (error.code)、構造化フィールド (error.detail) を付与する。
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler は handler を ErrFmtHandler で包む。
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var (
		found   error
		hasCode bool
	)
	r.Attrs(func(attr slog.Attr) bool {
		switch attr.Key {
		case ErrAttrKey:
			if err, ok := attr.Value.Any().(error); ok && found == nil {
				found = err
			}
		case ErrorCodeKey:
			hasCode = true
		}
		return true
	})
	if found == nil {
		return eh.handler.Handle(ctx, r)
	}

	if st := extractStacktrace(found); st != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, st))
	}
	if d, ok := describeError(found); ok {
		r.AddAttrs(slog.String(ErrorTypeKey, d.typeName), slog.Any(ErrorDetailKey, d.fields))
		if d.code != "" && !hasCode {
			r.AddAttrs(slog.String(ErrorCodeKey, d.code))
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// errorCodes は型付きエラーの型名からエラーコードへの対応
var errorCodes = map[string]string{
	"InvalidInputError":         ErrorInvalidInput,
	"DimensionError":            ErrorInvalidInput,
	"ValidationError":           ErrorInvalidInput,
	"NotFittedError":            ErrorNotFitted,
	"ConvergenceWarning":        ErrorConvergence,
	"NumericalInstabilityError": ErrorNumerical,
}

type errorDescription struct {
	typeName string
	code     string
	fields   map[string]any
}

// describeError は err の連鎖をたどり、最初に見つかった zerolog.LogObjectMarshaler を
// フィールドに展開する。型付きエラーを含まない場合は ok=false。
func describeError(err error) (errorDescription, bool) {
	m := typedError(err)
	if m == nil {
		return errorDescription{}, false
	}

	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	zl.Log().EmbedObject(m).Send()

	var fields map[string]any
	if jerr := json.Unmarshal(buf.Bytes(), &fields); jerr != nil {
		return errorDescription{}, false
	}
	typeName, _ := fields["type"].(string)
	if typeName == "" {
		return errorDescription{}, false
	}
	delete(fields, "type")
	return errorDescription{typeName: typeName, code: errorCodes[typeName], fields: fields}, true
}

func typedError(err error) zerolog.LogObjectMarshaler {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if m, ok := e.(zerolog.LogObjectMarshaler); ok {
			return m
		}
	}
	return nil
}

// errorFields は describeError の結果を key/value 列にする。fields に既にあるキーは重複させない。
func errorFields(err error, fields []any) []any {
	d, ok := describeError(err)
	if !ok {
		return nil
	}
	out := []any{ErrorTypeKey, d.typeName, ErrorDetailKey, d.fields}
	if d.code != "" && !hasKey(fields, ErrorCodeKey) {
		out = append(out, ErrorCodeKey, d.code)
	}
	return out
}

func hasKey(fields []any, key string) bool {
	for i := 0; i < len(fields)-1; i += 2 {
		if k, ok := fields[i].(string); ok && k == key {
			return true
		}
	}
	return false
}
