package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("loading upload: %w", UnsupportedFormat("不支持的文件格式"))

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnsupportedFormat, kind)
	assert.True(t, Is(err, KindUnsupportedFormat))
	assert.False(t, Is(err, KindEmptyInput))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestSoftFailure(t *testing.T) {
	sf := SoftFailure(EmptyInput("请上传数据文件"))
	assert.Equal(t, "empty_input", sf.Kind)
	assert.Equal(t, "请上传数据文件", sf.Message)

	sf = SoftFailure(errors.New("disk on fire"))
	assert.Equal(t, "computation_failure", sf.Kind)
	assert.Contains(t, sf.Message, "disk on fire")
}

func TestSoftKinds(t *testing.T) {
	assert.True(t, EmptyInput("x").Soft())
	assert.True(t, UnsupportedFormat("x").Soft())
	assert.False(t, InvalidInput("age %d", -1).Soft())
	assert.False(t, ComputationFailure("分析失败", errors.New("x")).Soft())
}

func TestComputationFailureKeepsCause(t *testing.T) {
	cause := errors.New("division by zero")
	err := ComputationFailure("分析失败", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "分析失败: division by zero", err.Message)
}

func TestRecoverConvertsPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover("分析失败", &err)
		var rows [][]string
		_ = rows[3]
		return nil
	}

	err := run()
	require.Error(t, err)
	assert.True(t, Is(err, KindComputationFailure))
	assert.Contains(t, err.Error(), "index out of range")
}
