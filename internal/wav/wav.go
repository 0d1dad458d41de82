// Package wav reads and writes 16-bit PCM WAV files, the benchmark
// command's input format.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Format describes a WAV file's PCM layout.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// WriteFile writes 16-bit PCM samples to filename as a canonical WAV file.
func WriteFile(filename string, samples []int16, format Format) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	defer file.Close()
	return Write(file, samples, format)
}

// Write encodes 16-bit PCM samples as a canonical WAV file to w.
func Write(w io.Writer, samples []int16, format Format) error {
	pcmData := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcmData[i*2:], uint16(s))
	}

	dataSize := uint32(len(pcmData))
	fileSize := 36 + dataSize
	byteRate := uint32(format.SampleRate * format.Channels * format.BitsPerSample / 8)
	blockAlign := uint16(format.Channels * format.BitsPerSample / 8)

	if _, err := io.WriteString(w, "RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, fileSize); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "WAVE"); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "fmt "); err != nil {
		return err
	}
	for _, v := range []interface{}{
		uint32(16),                   // fmt subchunk size
		uint16(1),                    // PCM
		uint16(format.Channels),      // channels
		uint32(format.SampleRate),    // sample rate
		byteRate,                     // byte rate
		blockAlign,                   // block align
		uint16(format.BitsPerSample), // bits per sample
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	_, err := w.Write(pcmData)
	return err
}

// ReadFile reads a 16-bit PCM WAV file and returns its samples and format.
func ReadFile(filename string) ([]int16, Format, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Format{}, fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a canonical WAV stream, looking for "fmt " and "data"
// subchunks and ignoring any others (e.g. "LIST" metadata).
func Read(r io.Reader) ([]int16, Format, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, Format{}, fmt.Errorf("read riff header: %w", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, Format{}, fmt.Errorf("not a RIFF/WAVE file")
	}

	var format Format
	var pcmData []byte
	haveFormat := false
	haveData := false

	for !haveData {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, Format{}, fmt.Errorf("read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, Format{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			format.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFormat = true
		case "data":
			pcmData = make([]byte, chunkSize)
			if _, err := io.ReadFull(r, pcmData); err != nil {
				return nil, Format{}, fmt.Errorf("read data chunk: %w", err)
			}
			haveData = true
		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, Format{}, fmt.Errorf("skip chunk %q: %w", chunkID, err)
			}
		}

		// WAV subchunks are padded to an even byte boundary.
		if chunkSize%2 == 1 {
			var pad [1]byte
			io.ReadFull(r, pad[:])
		}
	}

	if !haveFormat {
		return nil, Format{}, fmt.Errorf("wav file has no fmt chunk")
	}
	if !haveData {
		return nil, Format{}, fmt.Errorf("wav file has no data chunk")
	}
	if format.BitsPerSample != 16 {
		return nil, Format{}, fmt.Errorf("unsupported bits per sample: %d (only 16-bit PCM is supported)", format.BitsPerSample)
	}

	samples := make([]int16, len(pcmData)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcmData[i*2:]))
	}
	return samples, format, nil
}
