package media_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
)

// wavBytes builds a minimal 16-bit mono PCM WAV stream.
func wavBytes(sampleRate int, samples []int16) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 0, 44+dataLen)

	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataLen))...)
	buf = append(buf, []byte("WAVE")...)

	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(1)...) // mono
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(sampleRate*2))...)
	buf = append(buf, u16(2)...)  // block align
	buf = append(buf, u16(16)...) // bit depth

	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataLen))...)
	for _, s := range samples {
		buf = append(buf, u16(uint16(s))...)
	}

	return buf
}

func mp3Bytes() []byte {
	// ID3v2 tag header is enough for signature detection
	header := []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	return append(header, make([]byte, 128)...)
}

func mp4Bytes() []byte {
	data := make([]byte, 0, 32)
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, 20)
	data = append(data, size...)
	data = append(data, []byte("ftypisom")...)
	data = append(data, []byte("isomiso2avc1mp41")...)
	return data
}

func TestClassifyWAV(t *testing.T) {
	cls, err := media.Classify(wavBytes(16000, []int16{0, 100, -100}), "voice.wav")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Modality != media.ModalityAudio {
		t.Errorf("Modality = %q, want audio", cls.Modality)
	}
	if cls.Extension != "wav" {
		t.Errorf("Extension = %q, want wav", cls.Extension)
	}
}

func TestClassifyMP3(t *testing.T) {
	cls, err := media.Classify(mp3Bytes(), "song.mp3")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Modality != media.ModalityAudio {
		t.Errorf("Modality = %q, want audio", cls.Modality)
	}
	if cls.Extension != "mp3" {
		t.Errorf("Extension = %q, want mp3", cls.Extension)
	}
}

func TestClassifyMP4(t *testing.T) {
	cls, err := media.Classify(mp4Bytes(), "clip.mp4")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Modality != media.ModalityVideo {
		t.Errorf("Modality = %q, want video", cls.Modality)
	}
	if cls.Extension != "mp4" {
		t.Errorf("Extension = %q, want mp4", cls.Extension)
	}
}

func TestClassifyM4ADeclaredName(t *testing.T) {
	// MP4 container with a declared .m4a name routes to the audio path
	cls, err := media.Classify(mp4Bytes(), "voice.m4a")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Modality != media.ModalityAudio {
		t.Errorf("Modality = %q, want audio", cls.Modality)
	}
	if cls.Extension != "m4a" {
		t.Errorf("Extension = %q, want m4a", cls.Extension)
	}
}

func TestClassifyUnsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("just some text content")},
		{"png signature", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := media.Classify(tt.data, "file.bin")
			if !errors.Is(err, media.ErrUnsupportedMedia) {
				t.Errorf("Classify() error = %v, want ErrUnsupportedMedia", err)
			}
		})
	}
}

// Declared extensions never override content signatures.
func TestClassifyIgnoresDeclaredExtension(t *testing.T) {
	_, err := media.Classify([]byte("definitely not audio data here"), "fake.mp3")
	if !errors.Is(err, media.ErrUnsupportedMedia) {
		t.Errorf("Classify() error = %v, want ErrUnsupportedMedia", err)
	}
}
