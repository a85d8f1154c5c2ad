// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wtesting "github.com/kraklabs/weave/internal/testing"
)

func TestRunnerSet_NoRunnerConfiguredIsNotInstalledWithEmptyFormatterName(t *testing.T) {
	set := NewRunnerSet()
	_, err := set.Format(context.Background(), []byte("x"), "sql", 80)
	require.Error(t, err)
	var fe *FormatterError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FormatterErrorNotInstalled, fe.Kind)
	assert.Empty(t, fe.Formatter)
}

func TestRunnerSet_FirstRegisteredRunnerWinsWhenBothCapable(t *testing.T) {
	set := NewRunnerSet()
	first := wtesting.NewStubRunner("sqlfmt")
	second := wtesting.NewStubRunner("pgformatter")
	set.Register("sql", first.Name, first)
	set.Register("sql", second.Name, second)

	out, err := set.Format(context.Background(), []byte("select 1"), "sql", 80)
	require.NoError(t, err)
	assert.Equal(t, "select 1", string(out))
	assert.Len(t, first.Calls(), 1)
	assert.Empty(t, second.Calls(), "a later runner must not run once an earlier one succeeds")
}

func TestRunnerSet_SkipsRunnerThatCannotFormatLanguage(t *testing.T) {
	set := NewRunnerSet()
	jsOnly := wtesting.NewStubRunner("prettier")
	jsOnly.Languages = map[string]struct{}{"javascript": {}}
	sqlFmt := wtesting.NewStubRunner("sqlfmt")
	set.Register("sql", jsOnly.Name, jsOnly)
	set.Register("sql", sqlFmt.Name, sqlFmt)

	_, err := set.Format(context.Background(), []byte("select 1"), "sql", 80)
	require.NoError(t, err)
	assert.Empty(t, jsOnly.Calls())
	assert.Len(t, sqlFmt.Calls(), 1)
}

func TestRunnerSet_FallsThroughConsecutiveNotInstalled(t *testing.T) {
	set := NewRunnerSet()
	missing1 := wtesting.NewNotInstalledRunner("sqlfmt")
	missing2 := wtesting.NewNotInstalledRunner("pgformatter")
	set.Register("sql", missing1.Name, missing1)
	set.Register("sql", missing2.Name, missing2)

	_, err := set.Format(context.Background(), []byte("select 1"), "sql", 80)
	require.Error(t, err)
	var fe *FormatterError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FormatterErrorNotInstalled, fe.Kind)
	assert.Equal(t, "pgformatter", fe.Formatter, "the last chain member's error is surfaced")
}

func TestRunnerSet_NonNotInstalledErrorShortCircuitsChain(t *testing.T) {
	set := NewRunnerSet()
	timesOut := wtesting.NewFailingRunner("sqlfmt", FormatterErrorTimeout)
	neverReached := wtesting.NewStubRunner("pgformatter")
	set.Register("sql", timesOut.Name, timesOut)
	set.Register("sql", neverReached.Name, neverReached)

	_, err := set.Format(context.Background(), []byte("select 1"), "sql", 80)
	require.Error(t, err)
	var fe *FormatterError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FormatterErrorTimeout, fe.Kind)
	assert.Empty(t, neverReached.Calls(), "a non-NotInstalled failure must not fall through to the next runner")
}
