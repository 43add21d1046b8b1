package index

import (
	"bytes"
	"encoding/binary"
	"io"
	"log"
)

type TermPostingsIterator struct {
	reader *bytes.Reader

	// Block header
	blockHeaderDecoded bool
	numDocs            byte
	firstDocId         DocumentId
	LastDocId          DocumentId
	nextBlockOffset    int64

	// Block data
	blockDataDecoded bool
	indexInBlock     int
	blockDocIds      []DocumentId
	blockFreqs       []uint32
	blockPositions   [][]uint32
}

func newTermPostingsIterator(data []byte) *TermPostingsIterator {
	return &TermPostingsIterator{
		indexInBlock:   -1,
		blockDocIds:    make([]DocumentId, 0, blockSize),
		blockFreqs:     make([]uint32, 0, blockSize),
		blockPositions: make([][]uint32, 0, blockSize),
		reader:         bytes.NewReader(data),
	}
}

func (it *TermPostingsIterator) readUvarint() uint64 {
	value, err := binary.ReadUvarint(it.reader)
	if err != nil {
		log.Fatalf("corrupt postings block: %v", err)
	}

	return value
}

func (it *TermPostingsIterator) decodeHeader() {
	start, err := it.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		log.Fatal(err)
	}

	var header [headerSize]byte
	if _, err := io.ReadFull(it.reader, header[:]); err != nil {
		log.Fatalf("corrupt postings block header: %v", err)
	}

	it.numDocs = header[0]
	it.firstDocId = DocumentId(binary.BigEndian.Uint32(header[1:]))
	it.LastDocId = DocumentId(binary.BigEndian.Uint32(header[5:]))
	it.nextBlockOffset = start + int64(binary.BigEndian.Uint32(header[9:]))
	it.blockHeaderDecoded = true
	it.blockDataDecoded = false
	it.indexInBlock = -1
}

func (it *TermPostingsIterator) decodeBlockData() {
	numDocs := int(it.numDocs)

	it.blockDocIds = it.blockDocIds[:0]
	for i := 0; i < numDocs; i++ {
		delta := DocumentId(it.readUvarint())
		if i == 0 {
			it.blockDocIds = append(it.blockDocIds, delta)
		} else {
			it.blockDocIds = append(it.blockDocIds, it.blockDocIds[i-1]+delta)
		}
	}

	it.blockFreqs = it.blockFreqs[:0]
	for i := 0; i < numDocs; i++ {
		it.blockFreqs = append(it.blockFreqs, uint32(it.readUvarint()))
	}

	it.blockPositions = it.blockPositions[:0]
	for i := 0; i < numDocs; i++ {
		positions := make([]uint32, it.blockFreqs[i])
		previous := uint32(0)
		for j := range positions {
			previous += uint32(it.readUvarint())
			positions[j] = previous
		}
		it.blockPositions = append(it.blockPositions, positions)
	}

	it.indexInBlock = 0
	it.blockDataDecoded = true
}

// NextShallow moves to the first block that may contain docId without decoding
// it. It returns false when no block remains.
func (it *TermPostingsIterator) NextShallow(docId DocumentId) bool {
	for {
		if !it.blockHeaderDecoded {
			if it.reader.Len() == 0 {
				return false
			}
			it.decodeHeader()
		}

		if docId <= it.LastDocId {
			return true
		}

		if it.nextBlockOffset >= it.reader.Size() {
			return false
		}

		if _, err := it.reader.Seek(it.nextBlockOffset, io.SeekStart); err != nil {
			log.Fatal(err)
		}

		it.blockHeaderDecoded = false
	}
}

// Next moves to the first document >= docId.
func (it *TermPostingsIterator) Next(docId DocumentId) bool {
	if !it.NextShallow(docId) {
		return false
	}

	if !it.blockDataDecoded {
		it.decodeBlockData()
	}

	for it.indexInBlock < len(it.blockDocIds) && it.blockDocIds[it.indexInBlock] < docId {
		it.indexInBlock++
	}

	// docId <= LastDocId, so the loop stops inside the block
	return it.indexInBlock < len(it.blockDocIds)
}

func (it *TermPostingsIterator) DocId() DocumentId {
	if it.blockDataDecoded {
		return it.blockDocIds[it.indexInBlock]
	}

	return it.firstDocId
}

func (it *TermPostingsIterator) TermFreq() uint32 {
	return it.blockFreqs[it.indexInBlock]
}

// Positions is only valid after Next returned true.
func (it *TermPostingsIterator) Positions() []uint32 {
	return it.blockPositions[it.indexInBlock]
}
