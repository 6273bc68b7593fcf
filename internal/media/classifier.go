package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// audio containers decoded natively; video containers go through ffmpeg.
var (
	audioTypes = map[string]string{
		"audio/mpeg":  "mp3",
		"audio/wav":   "wav",
		"audio/x-m4a": "m4a",
	}
	videoTypes = map[string]string{
		"video/mp4": "mp4",
	}
)

// Classify determines the modality of raw file bytes from their content
// signature. The declared name is only used to disambiguate containers that
// share a signature (m4a audio inside an MP4 container). Unrecognized or
// empty content returns ErrUnsupportedMedia.
func Classify(data []byte, declaredName string) (Classification, error) {
	if len(data) == 0 {
		return Classification{}, fmt.Errorf("%w: empty file", ErrUnsupportedMedia)
	}

	mtype := mimetype.Detect(data)

	for mime, ext := range audioTypes {
		if mtype.Is(mime) {
			return Classification{
				Modality:    ModalityAudio,
				ContentType: mime,
				Extension:   ext,
			}, nil
		}
	}

	for mime, ext := range videoTypes {
		if mtype.Is(mime) {
			// MP4 containers with a declared .m4a extension are audio-only
			// exports; route them to the audio path.
			if strings.EqualFold(filepath.Ext(declaredName), ".m4a") {
				return Classification{
					Modality:    ModalityAudio,
					ContentType: mime,
					Extension:   "m4a",
				}, nil
			}
			return Classification{
				Modality:    ModalityVideo,
				ContentType: mime,
				Extension:   ext,
			}, nil
		}
	}

	return Classification{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
}
