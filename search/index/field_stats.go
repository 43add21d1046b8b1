package index

import (
	"encoding/binary"
	"fmt"
	"os"
)

const fieldStatsSize = 12

type FieldStats struct {
	// Number of documents of the segment having at least one term in the field
	DocCount    uint32
	SumTermFreq uint64
}

func writeFieldStats(directory string, segmentId uint32, fieldName string, stats FieldStats) error {
	file, err := createFile(segmentFileName(directory, segmentId, fieldName, "stats"))
	if err != nil {
		return err
	}

	buffer := make([]byte, 0, fieldStatsSize)
	buffer = binary.BigEndian.AppendUint32(buffer, stats.DocCount)
	buffer = binary.BigEndian.AppendUint64(buffer, stats.SumTermFreq)

	if _, err := file.Write(buffer); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func readFieldStats(directory string, segmentId uint32, fieldName string) (FieldStats, error) {
	filename := segmentFileName(directory, segmentId, fieldName, "stats")

	buffer, err := os.ReadFile(filename)
	if err != nil {
		return FieldStats{}, err
	}

	if len(buffer) != fieldStatsSize {
		return FieldStats{}, fmt.Errorf("%s: expected %d bytes, got %d", filename, fieldStatsSize, len(buffer))
	}

	return FieldStats{
		DocCount:    binary.BigEndian.Uint32(buffer),
		SumTermFreq: binary.BigEndian.Uint64(buffer[4:]),
	}, nil
}
