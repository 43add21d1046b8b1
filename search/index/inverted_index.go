package index

import (
	"errors"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

type Posting struct {
	docId    DocumentId
	position uint32
}

type InvertedIndexWriter struct {
	docId          DocumentId
	docCount       uint32
	fieldName      string
	fieldId        int
	positionOffset uint32
	fieldLength    uint32

	fieldIds   map[string]int
	fieldNames []string
	// postings[fieldId][term]
	postings []map[string][]*Posting

	// fieldLengths[fieldName][docId]
	fieldLengths map[string]map[DocumentId]uint32
}

func newInvertedIndexWriter() *InvertedIndexWriter {
	return &InvertedIndexWriter{
		fieldIds:     make(map[string]int),
		fieldNames:   make([]string, 0, 5),
		postings:     make([]map[string][]*Posting, 0, 5),
		fieldLengths: make(map[string]map[DocumentId]uint32),
	}
}

func (w *InvertedIndexWriter) Doc(docId DocumentId) {
	w.docId = docId
	if uint32(docId)+1 > w.docCount {
		w.docCount = uint32(docId) + 1
	}
}

func (w *InvertedIndexWriter) Field(fieldName string, value []byte) {
	w.fieldName = fieldName

	fieldId, exists := w.fieldIds[fieldName]
	if !exists {
		fieldId = len(w.fieldIds)
		w.fieldNames = append(w.fieldNames, fieldName)
		w.fieldIds[fieldName] = fieldId
		w.postings = append(w.postings, make(map[string][]*Posting))
		w.fieldLengths[fieldName] = make(map[DocumentId]uint32)
	}

	w.fieldId = fieldId

	// A field repeated in the same document continues the token stream
	w.positionOffset = w.fieldLengths[fieldName][w.docId]
	w.fieldLength = w.positionOffset
}

func (w *InvertedIndexWriter) EndField() {
	w.fieldLengths[w.fieldName][w.docId] = w.fieldLength
}

func (w *InvertedIndexWriter) Term(term []byte, position uint32) {
	termString := string(term)
	posting := &Posting{
		docId:    w.docId,
		position: w.positionOffset + position,
	}

	w.postings[w.fieldId][termString] = append(w.postings[w.fieldId][termString], posting)

	if posting.position+1 > w.fieldLength {
		w.fieldLength = posting.position + 1
	}
}

func (w *InvertedIndexWriter) Write(directory string, segmentId uint32) error {
	for fieldId, fieldPostings := range w.postings {
		if err := w.writeField(directory, segmentId, w.fieldNames[fieldId], fieldPostings); err != nil {
			return err
		}
	}

	return nil
}

func (w *InvertedIndexWriter) writeField(directory string, segmentId uint32, fieldName string, fieldPostings map[string][]*Posting) (err error) {
	postingsWriter, err := newFieldPostingsWriter(directory, segmentId, fieldName)
	if err != nil {
		return err
	}

	dictWriter, err := newDictionaryWriter(directory, segmentId, fieldName)
	if err != nil {
		_ = postingsWriter.Close()
		return err
	}

	defer func() {
		err = errors.Join(err, postingsWriter.Close(), dictWriter.Close())
	}()

	fieldDocIds := roaring.NewBitmap()
	var fieldSumTermFreq uint64

	sortedTerms := make([]string, 0, len(fieldPostings))
	for term := range fieldPostings {
		sortedTerms = append(sortedTerms, term)
	}
	slices.Sort(sortedTerms)

	termDocIds := make([]uint32, 0, 100)
	termPositions := make([][]uint32, 0, 100)

	for _, term := range sortedTerms {
		termDocIds = termDocIds[:0]
		termPositions = termPositions[:0]

		// Postings were appended document by document, position by position
		for _, posting := range fieldPostings[term] {
			last := len(termDocIds) - 1
			if last < 0 || termDocIds[last] != uint32(posting.docId) {
				termDocIds = append(termDocIds, uint32(posting.docId))
				termPositions = append(termPositions, make([]uint32, 0, 4))
				last++
			}

			termPositions[last] = append(termPositions[last], posting.position)
		}

		termInfo := &TermInfo{DocFreq: uint32(len(termDocIds))}

		for i := 0; i < len(termDocIds); i += blockSize {
			end := min(i+blockSize, len(termDocIds))

			startOffset, endOffset, err := postingsWriter.WriteBlock(termDocIds[i:end], termPositions[i:end])
			if err != nil {
				return err
			}

			if i == 0 {
				termInfo.PostingsFileStartOffset = startOffset
			}
			termInfo.PostingsFileEndOffset = endOffset
		}

		for i, docId := range termDocIds {
			fieldDocIds.Add(docId)
			termInfo.CollectionTermFreq += uint64(len(termPositions[i]))
		}
		fieldSumTermFreq += termInfo.CollectionTermFreq

		if err := dictWriter.Write([]byte(term), termInfo); err != nil {
			return err
		}
	}

	stats := FieldStats{
		DocCount:    uint32(fieldDocIds.GetCardinality()),
		SumTermFreq: fieldSumTermFreq,
	}
	if err := writeFieldStats(directory, segmentId, fieldName, stats); err != nil {
		return err
	}

	lengths := make([]uint32, w.docCount)
	for docId, length := range w.fieldLengths[fieldName] {
		lengths[docId] = length
	}

	lengthWriter, err := newFieldLengthWriter(directory, segmentId, fieldName)
	if err != nil {
		return err
	}

	return writeFieldLengths(lengthWriter, lengths)
}
