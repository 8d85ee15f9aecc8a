package outline_test

import (
	"strings"
	"testing"

	"github.com/rohmanhakim/vnlaw-crawler/internal/outline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(h *outline.Heading) string {
	if h == nil || h.Name == nil {
		return ""
	}
	return *h.Name
}

func TestParse_ChapterResetsPartSection(t *testing.T) {
	blocks := []string{
		"QUỐC HỘI",
		"Phần thứ nhất",
		"Tổng quát",
		"Chương I",
		"Mở đầu",
		"Điều 1. Phạm vi điều chỉnh",
		"Luật này quy định về chế độ sở hữu đất đai.",
		"Chương II",
		"Kết",
		"Điều 2. Hiệu lực thi hành",
		"Luật này có hiệu lực từ ngày 01 tháng 7 năm 2014.",
	}

	result := outline.Parse(blocks)

	require.Len(t, result.Articles, 2)

	first := result.Articles[0]
	assert.Equal(t, 1, first.Number)
	require.NotNil(t, first.Name)
	assert.Equal(t, "Phạm vi điều chỉnh", *first.Name)
	assert.Equal(t, "Luật này quy định về chế độ sở hữu đất đai.", first.Body)
	require.NotNil(t, first.Position.BigPart)
	assert.Equal(t, "nhất", first.Position.BigPart.Number)
	assert.Equal(t, "Tổng quát", name(first.Position.BigPart))
	require.NotNil(t, first.Position.Chapter)
	assert.Equal(t, "I", first.Position.Chapter.Number)
	assert.Equal(t, "Mở đầu", name(first.Position.Chapter))
	assert.Nil(t, first.Position.PartSection)

	second := result.Articles[1]
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, "Tổng quát", name(second.Position.BigPart))
	require.NotNil(t, second.Position.Chapter)
	assert.Equal(t, "II", second.Position.Chapter.Number)
	assert.Equal(t, "Kết", name(second.Position.Chapter))
	assert.Nil(t, second.Position.PartSection)

	assert.Equal(t, "Mở đầu", name(result.Preamble.Chapter))
}

func TestParse_ChapterAndBigPartCloseLowerLevels(t *testing.T) {
	blocks := []string{
		"Phần thứ nhất", "Chung",
		"Chương I", "Một",
		"Mục I", "Mục một",
		"Tiểu mục I", "Tiểu mục một",
		"Điều 1. A",
		"a1",
		"Chương II", "Hai",
		"Điều 2. B",
		"b1",
		"Mục II", "Mục hai",
		"Tiểu mục II", "Tiểu mục hai",
		"Điều 3. C",
		"c1",
		"Phần thứ hai", "Riêng",
		"Điều 4. D",
		"d1",
	}

	result := outline.Parse(blocks)
	require.Len(t, result.Articles, 4)

	a1 := result.Articles[0]
	require.NotNil(t, a1.Position.PartSection)
	assert.Equal(t, "Mục một", name(a1.Position.PartSection))
	require.NotNil(t, a1.Position.MiniPart)
	assert.Equal(t, "Tiểu mục một", name(a1.Position.MiniPart))

	a2 := result.Articles[1]
	assert.Equal(t, "Hai", name(a2.Position.Chapter))
	assert.Nil(t, a2.Position.PartSection, "a chapter closes the part section")
	assert.Nil(t, a2.Position.MiniPart, "a chapter closes the mini part")

	a3 := result.Articles[2]
	require.NotNil(t, a3.Position.PartSection)
	require.NotNil(t, a3.Position.MiniPart)

	a4 := result.Articles[3]
	assert.Equal(t, "Riêng", name(a4.Position.BigPart))
	assert.Equal(t, "Hai", name(a4.Position.Chapter))
	assert.Nil(t, a4.Position.PartSection, "a big part closes the part section")
	assert.Nil(t, a4.Position.MiniPart, "a big part closes the mini part")
}

func TestParse_HeaderWithoutNameBeforeArticle(t *testing.T) {
	blocks := []string{
		"Điều 1. A",
		"a1",
		"Chương II",
		"Điều 2. B",
		"b1",
		"Điều 3. C",
	}

	result := outline.Parse(blocks)
	require.Len(t, result.Articles, 3)

	assert.Equal(t, "a1", result.Articles[0].Body)

	a2 := result.Articles[1]
	assert.Equal(t, 2, a2.Number)
	require.NotNil(t, a2.Name)
	assert.Equal(t, "B", *a2.Name)
	assert.Equal(t, "b1", a2.Body)
	require.NotNil(t, a2.Position.Chapter)
	assert.Equal(t, "II", a2.Position.Chapter.Number)
	assert.Nil(t, a2.Position.Chapter.Name)

	assert.Equal(t, 3, result.Articles[2].Number)
}

func TestParse_HeaderWithoutNameBeforeHeaderOrTerminator(t *testing.T) {
	blocks := []string{
		"Chương I",
		"Mục I", "Chung",
		"Điều 1. A",
		"a1",
		"Chương II",
		"____",
		"Nơi nhận:",
	}

	result := outline.Parse(blocks)
	require.Len(t, result.Articles, 1)

	a1 := result.Articles[0]
	require.NotNil(t, a1.Position.Chapter)
	assert.Nil(t, a1.Position.Chapter.Name)
	assert.Equal(t, "Chung", name(a1.Position.PartSection))
	assert.Equal(t, "a1", a1.Body)
}

func TestParse_SnapshotIsNotAffectedByLaterHeaders(t *testing.T) {
	blocks := []string{
		"Chương I", "Một",
		"Mục 1", "ignored, not roman",
		"Điều 1. A",
		"a1",
		"Mục II", "Hai",
		"Tiểu mục I", "Nhỏ",
		"a2",
		"Điều 2. B",
		"Mục III", "Ba",
		"Điều 3. C",
	}

	result := outline.Parse(blocks)
	require.Len(t, result.Articles, 3)

	a1 := result.Articles[0]
	assert.Nil(t, a1.Position.PartSection)
	assert.Nil(t, a1.Position.MiniPart)
	assert.Equal(t, "a1\na2", a1.Body)

	a2 := result.Articles[1]
	require.NotNil(t, a2.Position.PartSection)
	assert.Equal(t, "II", a2.Position.PartSection.Number)
	require.NotNil(t, a2.Position.MiniPart)
	assert.Equal(t, "Nhỏ", name(a2.Position.MiniPart))

	a3 := result.Articles[2]
	assert.Equal(t, "III", a3.Position.PartSection.Number)
	assert.Nil(t, a3.Position.MiniPart, "a new part section closes the mini part")
	assert.Equal(t, "Một", name(a3.Position.Chapter))
}

func TestParse_NoArticle(t *testing.T) {
	result := outline.Parse([]string{"Chương I", "Phụ lục", "Biểu mẫu số 01"})

	assert.Empty(t, result.Articles)
	assert.Equal(t, "I", result.Preamble.Chapter.Number)

	assert.Empty(t, outline.Parse(nil).Articles)
}

func TestParse_UnderscoreRunTerminatesArticle(t *testing.T) {
	blocks := []string{
		"Điều 1. Hiệu lực",
		"Nghị định này có hiệu lực kể từ ngày ký.",
		"____________",
		"Nơi nhận:",
		"- Như Điều 1;",
	}

	result := outline.Parse(blocks)

	require.Len(t, result.Articles, 1)
	assert.Equal(t, "Nghị định này có hiệu lực kể từ ngày ký.", result.Articles[0].Body)
}

func TestParse_MarkerAndTerminatorAdjacent(t *testing.T) {
	blocks := []string{
		"Điều 1. A",
		"body",
		"__",
		"Điều 2. B",
		"tail",
	}

	result := outline.Parse(blocks)

	require.Len(t, result.Articles, 2)
	assert.Equal(t, "body", result.Articles[0].Body)
	assert.Equal(t, "tail", result.Articles[1].Body)
}

func TestParse_ArticleNameRules(t *testing.T) {
	long := strings.Repeat("dài ", 120)

	blocks := []string{
		"Điều 5",
		"x",
		"Điều thứ 6: ... Giải thích từ ngữ",
		"y",
		"Điều 7. " + long,
		"z",
		"Điều 9.",
	}

	result := outline.Parse(blocks)
	require.Len(t, result.Articles, 4)

	assert.Equal(t, 5, result.Articles[0].Number)
	assert.Nil(t, result.Articles[0].Name)

	assert.Equal(t, 6, result.Articles[1].Number)
	require.NotNil(t, result.Articles[1].Name)
	assert.Equal(t, "Giải thích từ ngữ", *result.Articles[1].Name)

	assert.Nil(t, result.Articles[2].Name)
	assert.True(t, strings.HasPrefix(result.Articles[2].Body, "dài dài"))
	assert.True(t, strings.HasSuffix(result.Articles[2].Body, "\nz"))

	assert.Equal(t, 9, result.Articles[3].Number)
	assert.Nil(t, result.Articles[3].Name)
	assert.Empty(t, result.Articles[3].Body)
}

func TestParse_NumbersNeedNotIncrease(t *testing.T) {
	result := outline.Parse([]string{"Điều 3. a", "Điều 3. b", "Điều 1. c"})

	require.Len(t, result.Articles, 3)
	assert.Equal(t, []int{3, 3, 1}, []int{
		result.Articles[0].Number, result.Articles[1].Number, result.Articles[2].Number,
	})
}

func TestParse_HeaderAtEndHasNoName(t *testing.T) {
	result := outline.Parse([]string{"Điều 1. a", "text", "Chương IX"})

	require.Len(t, result.Articles, 1)
	assert.Equal(t, "text", result.Articles[0].Body)

	pre := outline.Parse([]string{"Phần thứ hai"})
	require.NotNil(t, pre.Preamble.BigPart)
	assert.Nil(t, pre.Preamble.BigPart.Name)
}

func TestParse_Idempotent(t *testing.T) {
	blocks := []string{"Phần thứ nhất", "Chung", "Chương I", "A", "Điều 1. X", "x", "Mục I", "M", "Điều 2. Y", "y", "___"}

	assert.Equal(t, outline.Parse(blocks), outline.Parse(blocks))
}

func TestParse_PartSectionSpellingVariant(t *testing.T) {
	result := outline.Parse([]string{"Mu\u0323c IV", "Biến thể", "Điều 1. a"})

	require.Len(t, result.Articles, 1)
	require.NotNil(t, result.Articles[0].Position.PartSection)
	assert.Equal(t, "IV", result.Articles[0].Position.PartSection.Number)
}
