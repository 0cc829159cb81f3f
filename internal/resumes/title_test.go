package resumes

import (
	"strings"
	"testing"
)

func TestDeriveTitleShortTextUnchanged(t *testing.T) {
	if got := DeriveTitle("짧은 자소서 제목"); got != "짧은 자소서 제목" {
		t.Fatalf("expected short text to pass through, got %q", got)
	}
}

func TestDeriveTitleCollapsesWhitespace(t *testing.T) {
	got := DeriveTitle("저는   백엔드\n개발자로서\t성장했습니다")
	if got != "저는 백엔드 개발자로서 성장했습니다" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}

func TestDeriveTitleTruncatesAtThirtyRunes(t *testing.T) {
	got := DeriveTitle(strings.Repeat("가", 100))
	if got != strings.Repeat("가", 30)+"..." {
		t.Fatalf("expected 30 runes plus ellipsis, got %q", got)
	}
}

func TestDeriveTitleExactlyThirtyRunesNoEllipsis(t *testing.T) {
	in := strings.Repeat("가", 30)
	if got := DeriveTitle(in); got != in {
		t.Fatalf("expected no ellipsis at exactly 30 runes, got %q", got)
	}
}
