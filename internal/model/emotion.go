package model

// Emotion 用户自报的情绪状态，驱动推荐内容
type Emotion string

const (
	EmotionDeprimido     Emotion = "Deprimido/a"
	EmotionTriste        Emotion = "Triste"
	EmotionEnojado       Emotion = "Enojado/a"
	EmotionDesmotivado   Emotion = "Desmotivado/a"
	EmotionIncomprendido Emotion = "Incomprendido/a"
	EmotionEstresado     Emotion = "Estresado/a"
)

// Emotions 全部情绪选项（选择页按此顺序渲染）
var Emotions = []Emotion{
	EmotionDeprimido,
	EmotionTriste,
	EmotionEnojado,
	EmotionDesmotivado,
	EmotionIncomprendido,
	EmotionEstresado,
}

// ValidEmotion 校验情绪值
func ValidEmotion(e string) bool {
	for _, emotion := range Emotions {
		if Emotion(e) == emotion {
			return true
		}
	}
	return false
}

// EmotionChannels 情绪对应的 YouTube 频道（Shorts 来源字典）
var EmotionChannels = map[Emotion][]string{
	EmotionDeprimido:     {"MusicaRelajante-oq6yh", "CassioToledo", "NomadicAmbience"},
	EmotionTriste:        {"Enchufetv", "Backdoor", "DarkarCompany"},
	EmotionEnojado:       {"Relaxedcamp", "NomadicAmbience"},
	EmotionDesmotivado:   {"caminoalexito_", "Excelentemode", "facumarpe"},
	EmotionIncomprendido: {"Legendaryreel", "HeroesEverywhere247"},
	EmotionEstresado:     {"Silentdayss", "Relaxedcamp", "NomadicAmbience"},
}
