package ai

import (
	_ "embed"

	"golang.org/x/text/language"
)

//go:embed prompts/person_analysis_zh.txt
var personAnalysisPromptZh string

//go:embed prompts/person_analysis_en.txt
var personAnalysisPromptEn string

// Locale bundles the prompt with the strings a presentation layer shows.
type Locale struct {
	Tag            language.Tag
	Prompt         string
	FailureMessage string
	EmptyMessage   string
	GenderLabel    string
	AgeLabel       string
	ResultsTitle   string
	PersonLabel    string

	// Labels only the mobile page uses.
	CameraAction       string
	GalleryAction      string
	AnalyzeAction      string
	AnalyzingStatus    string
	ReadFailureMessage string
}

var locales = []Locale{
	{
		Tag:            language.SimplifiedChinese,
		Prompt:         personAnalysisPromptZh,
		FailureMessage: "无法分析图片，请稍后重试或更换图片。",
		EmptyMessage:   "未检测到清晰的人脸信息",
		GenderLabel:    "性别",
		AgeLabel:       "年龄",
		ResultsTitle:   "检测结果",
		PersonLabel:    "人物",

		CameraAction:       "拍照",
		GalleryAction:      "相册",
		AnalyzeAction:      "分析",
		AnalyzingStatus:    "分析中…",
		ReadFailureMessage: "无法读取图片，请重新选择。",
	},
	{
		Tag:            language.English,
		Prompt:         personAnalysisPromptEn,
		FailureMessage: "Could not analyze the image. Please try again later or use a different image.",
		EmptyMessage:   "No clearly visible people were detected.",
		GenderLabel:    "Gender",
		AgeLabel:       "Age",
		ResultsTitle:   "Results",
		PersonLabel:    "Person",

		CameraAction:       "Camera",
		GalleryAction:      "Gallery",
		AnalyzeAction:      "Analyze",
		AnalyzingStatus:    "Analyzing…",
		ReadFailureMessage: "Could not read the image. Please choose it again.",
	},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// LocaleFor picks the closest supported locale for a BCP 47 string or an
// Accept-Language header value. Unknown input falls back to Chinese.
func LocaleFor(lang string) Locale {
	_, idx := language.MatchStrings(localeMatcher, lang)
	return locales[idx]
}
