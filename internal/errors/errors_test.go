package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sitedeploy.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "sitedeploy.yaml", file)
	})

	t.Run("Wrapping keeps the cause reachable", func(t *testing.T) {
		cause := stderrors.New("disk full")
		err := WrapError(cause, CategoryFileSystem, "write page").Build()

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "[filesystem:error] write page: disk full", err.Error())
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := ValidationError("bad path").Build()
		derived := base.WithContext("page", "/index.html")

		_, ok := base.Context().Get("page")
		assert.False(t, ok)
		page, _ := derived.Context().GetString("page")
		assert.Equal(t, "/index.html", page)
	})
}

func TestCategoryLookup(t *testing.T) {
	inner := TransferError("rsync exited with status 23").Build()
	outer := fmt.Errorf("deploy car-points: %w", inner)

	got, ok := AsClassified(outer)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.Equal(t, CategoryTransfer, GetCategory(outer))
	assert.True(t, HasCategory(outer, CategoryTransfer))
	assert.False(t, HasCategory(outer, CategoryValidation))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	plain := stderrors.New("boom")
	classified := Classify(plain)
	assert.Equal(t, CategoryInternal, classified.Category())
	assert.ErrorIs(t, classified, plain)

	already := RenderError("broken node").Build()
	assert.Same(t, already, Classify(already))
}

func TestSummaryAndChain(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "failed to create deploy directory").
		WithContext("site", "car-points").
		Build()

	assert.Equal(t, "filesystem: failed to create deploy directory", Summary(err))
	assert.Equal(t, "boom", Summary(stderrors.New("boom")))
	assert.Empty(t, Summary(nil))

	chain := Chain(err)
	require.Len(t, chain, 2)
	assert.Contains(t, chain[0], "failed to create deploy directory")
	assert.Contains(t, chain[0], "car-points")
	assert.Equal(t, "permission denied", chain[1])
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("no host").Build(), expected: 2},
		{name: "config", err: ConfigError("bad yaml").Build(), expected: 7},
		{name: "transfer", err: TransferError("rsync failed").Build(), expected: 8},
		{name: "filesystem", err: FileSystemError("mkdir").Build(), expected: 11},
		{name: "storage", err: StorageError("open").Build(), expected: 11},
		{name: "runtime", err: RuntimeError("rsync missing").Build(), expected: 12},
		{name: "internal", err: InternalError("bug").Build(), expected: 10},
		{name: "unclassified", err: stderrors.New("unknown"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	code := adapter.Report(&out, ValidationError("no remote hostname was specified").Build())

	assert.Equal(t, 2, code)
	assert.Equal(t, "no remote hostname was specified\n", out.String())
	assert.Contains(t, logs.String(), "category=validation")
}
