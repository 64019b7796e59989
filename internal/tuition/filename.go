package tuition

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tutornotes/internal/codes"
	"tutornotes/internal/core"
)

// ParseFilename decodes CODE-Student-Month.ext. Any directory prefix is ignored.
func ParseFilename(name string, table *codes.Table) (core.FileDescriptor, error) {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(stem, "-")
	if len(parts) != 3 {
		return core.FileDescriptor{}, fmt.Errorf("%w: %q has %d segments", core.ErrFormat, base, len(parts))
	}
	code := strings.TrimSpace(parts[0])
	student := strings.TrimSpace(parts[1])
	if student == "" {
		return core.FileDescriptor{}, fmt.Errorf("%w: %q has no student name", core.ErrFormat, base)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || month < 1 || month > 12 {
		return core.FileDescriptor{}, fmt.Errorf("%w: %q is not a month", core.ErrFormat, parts[2])
	}
	if !table.IsCourse(code) {
		return core.FileDescriptor{}, fmt.Errorf("%w: %q", core.ErrUnknownCode, code)
	}

	return core.FileDescriptor{CourseCode: code, Student: student, Month: month}, nil
}
