package scoring

// Aggregate combines optional per-modality scores into one Truth Score.
// With both scores present it returns the weighted average; with exactly one
// it returns that score unchanged. Neither present returns ErrNoScores.
func Aggregate(audio, video *float64, cfg Config) (float64, error) {
	switch {
	case audio != nil && video != nil:
		return *audio*cfg.AudioWeight + *video*cfg.VideoWeight, nil
	case audio != nil:
		return *audio, nil
	case video != nil:
		return *video, nil
	default:
		return 0, ErrNoScores
	}
}
