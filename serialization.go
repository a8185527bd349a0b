package daat

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encode and Decode checkpoint the mutable InvertedIndex to a custom binary
// format so cmd/daatingest can resume a partial ingestion run after a crash
// or restart instead of re-tokenizing the whole corpus. The format stores
// corpus-wide stats, per-document BM25 stats, then each term's skip list
// with its tower pointers rewritten as small integer node indices (raw
// pointers aren't meaningful after a process restart).
//
// [Header: TotalDocs uint32, TotalTerms uint64, BM25.K1/B float64, NumDocStats uint32]
// [DocStats: DocID, Length, NumTerms, (TermLength, Term, Frequency)*]*
// [PostingsList: (TermLength, Term, NodeDataLength, NodeData, TowerData)]*
func (idx *InvertedIndex) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)

	// Write header with BM25 metadata
	if err := idx.encodeHeader(buf); err != nil {
		return nil, err
	}

	// Write document statistics
	if err := idx.encodeDocStats(buf); err != nil {
		return nil, err
	}

	// Write posting lists (existing format)
	encoder := newIndexEncoder(buf)
	for term, skipList := range idx.PostingsList {
		if err := encoder.encodeTerm(term, skipList); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// encodeHeader writes the index metadata
func (idx *InvertedIndex) encodeHeader(buf *bytes.Buffer) error {
	// Write corpus statistics
	if err := binary.Write(buf, binary.LittleEndian, uint32(idx.TotalDocs)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint64(idx.TotalTerms)); err != nil {
		return err
	}

	// Write BM25 parameters
	if err := binary.Write(buf, binary.LittleEndian, idx.BM25Params.K1); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, idx.BM25Params.B); err != nil {
		return err
	}

	// Write number of documents with statistics
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(idx.DocStats))); err != nil {
		return err
	}

	return nil
}

// encodeDocStats writes document statistics for BM25
func (idx *InvertedIndex) encodeDocStats(buf *bytes.Buffer) error {
	for _, docStats := range idx.DocStats {
		// Write document ID and length
		if err := binary.Write(buf, binary.LittleEndian, uint32(docStats.DocID)); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint32(docStats.Length)); err != nil {
			return err
		}

		// Write number of unique terms
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(docStats.TermFreqs))); err != nil {
			return err
		}

		// Write each term and its frequency
		for term, freq := range docStats.TermFreqs {
			// Write term length and term
			termBytes := []byte(term)
			if err := binary.Write(buf, binary.LittleEndian, uint32(len(termBytes))); err != nil {
				return err
			}
			if _, err := buf.Write(termBytes); err != nil {
				return err
			}

			// Write frequency
			if err := binary.Write(buf, binary.LittleEndian, uint32(freq)); err != nil {
				return err
			}
		}
	}

	return nil
}

// indexEncoder carries the output buffer through the term-encoding helpers.
type indexEncoder struct {
	buffer *bytes.Buffer // Accumulates the serialized data
}

func newIndexEncoder(buffer *bytes.Buffer) *indexEncoder {
	return &indexEncoder{
		buffer: buffer,
	}
}

// encodeTerm writes a term's name, then its skip list's node positions and
// tower structure.
func (e *indexEncoder) encodeTerm(term string, skipList SkipList) error {
	if err := e.writeString(term); err != nil {
		return err
	}

	nodeMap := e.buildNodeIndexMap(skipList)

	nodeData := e.encodeNodePositions(skipList)
	if err := e.writeBytes(nodeData); err != nil {
		return err
	}

	return e.encodeTowerStructure(skipList, nodeMap)
}

// writeString writes a length-prefixed string: [length uint32][bytes].
func (e *indexEncoder) writeString(s string) error {
	data := []byte(s)

	// Write length as 32-bit unsigned integer (4 bytes)
	if err := binary.Write(e.buffer, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}

	// Write the actual string bytes
	_, err := e.buffer.Write(data)
	return err
}

func (e *indexEncoder) writeBytes(data []byte) error {
	if err := binary.Write(e.buffer, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := e.buffer.Write(data)
	return err
}

// buildNodeIndexMap assigns each node a stable sequential index (1, 2, ...)
// so tower pointers can be encoded as small integers instead of addresses,
// which are meaningless once the process restarts.
func (e *indexEncoder) buildNodeIndexMap(skipList SkipList) map[nodePosition]int {
	nodeMap := make(map[nodePosition]int)
	current := skipList.Head
	index := 1 // 0 is reserved for nil

	for current != nil {
		pos := nodePosition{
			DocID:    int32(current.Key.DocumentID),
			Position: int32(current.Key.Offset),
		}
		nodeMap[pos] = index
		index++
		current = current.Tower[0]
	}

	return nodeMap
}

// encodeNodePositions writes [DocID int32][Offset int32] per node.
func (e *indexEncoder) encodeNodePositions(skipList SkipList) []byte {
	buf := new(bytes.Buffer)
	current := skipList.Head

	// Traverse all nodes in the skip list
	for current != nil {
		// Write document ID (4 bytes)
		binary.Write(buf, binary.LittleEndian, int32(current.Key.DocumentID))

		// Write offset (4 bytes)
		binary.Write(buf, binary.LittleEndian, int32(current.Key.Offset))

		// Move to next node
		current = current.Tower[0]
	}

	return buf.Bytes()
}

// encodeTowerStructure writes each node's tower (its forward pointers at
// every level it reaches) as a list of target node indices.
func (e *indexEncoder) encodeTowerStructure(skipList SkipList, nodeMap map[nodePosition]int) error {
	current := skipList.Head

	// Encode tower for each node in the skip list
	for current != nil {
		towerData := e.encodeTowerForNode(current, nodeMap)
		if err := e.writeBytes(towerData); err != nil {
			return err
		}
		current = current.Tower[0]
	}

	return nil
}

// encodeTowerForNode writes a node's non-nil tower targets as uint16
// indices, or a single 0 if the tower is empty.
func (e *indexEncoder) encodeTowerForNode(node *Node, nodeMap map[nodePosition]int) []byte {
	buf := new(bytes.Buffer)

	towerIndices := e.collectTowerIndices(node, nodeMap)

	if len(towerIndices) == 0 {
		binary.Write(buf, binary.LittleEndian, uint16(0))
	} else {
		for _, index := range towerIndices {
			binary.Write(buf, binary.LittleEndian, uint16(index))
		}
	}

	return buf.Bytes()
}

// collectTowerIndices walks a node's tower until the first nil pointer,
// converting each target to its sequential index.
func (e *indexEncoder) collectTowerIndices(node *Node, nodeMap map[nodePosition]int) []int {
	var indices []int

	for level := 0; level < MaxHeight; level++ {
		if node.Tower[level] == nil {
			break
		}

		pos := nodePosition{
			DocID:    int32(node.Tower[level].Key.DocumentID),
			Position: int32(node.Tower[level].Key.Offset),
		}
		indices = append(indices, nodeMap[pos])
	}

	return indices
}

// nodePosition is a compact, comparable key for a node's position, used as
// a map key when building the index→node correspondence.
type nodePosition struct {
	DocID    int32
	Position int32
}

// Decode is the inverse of Encode: it reads the header, per-document BM25
// stats, and each term's skip list back out of data and repopulates idx.
func (idx *InvertedIndex) Decode(data []byte) error {
	offset := 0

	// Read header with BM25 metadata
	newOffset, err := idx.decodeHeader(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	// Read document statistics
	newOffset, err = idx.decodeDocStats(data, offset)
	if err != nil {
		return err
	}
	offset = newOffset

	// Read posting lists (existing format)
	decoder := newIndexDecoder(data, offset)
	recoveredIndex := make(map[string]SkipList)

	for !decoder.isComplete() {
		term, skipList, err := decoder.decodeTerm()
		if err != nil {
			return err
		}
		recoveredIndex[term] = skipList
	}

	idx.PostingsList = recoveredIndex
	return nil
}

// decodeHeader reads the index metadata
func (idx *InvertedIndex) decodeHeader(data []byte, offset int) (int, error) {
	// Read corpus statistics
	idx.TotalDocs = int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.TotalTerms = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	// Read BM25 parameters
	idx.BM25Params.K1 = math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	idx.BM25Params.B = math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	return offset, nil
}

// decodeDocStats reads document statistics
func (idx *InvertedIndex) decodeDocStats(data []byte, offset int) (int, error) {
	// Read number of documents
	numDocs := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	idx.DocStats = make(map[int]DocumentStats, numDocs)

	for i := 0; i < numDocs; i++ {
		// Read document ID and length
		docID := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		// Read number of unique terms
		numTerms := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4

		// Initialize document stats
		docStats := DocumentStats{
			DocID:     docID,
			Length:    length,
			TermFreqs: make(map[string]int, numTerms),
		}

		// Read each term and its frequency
		for j := 0; j < numTerms; j++ {
			// Read term length
			termLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4

			// Read term
			term := string(data[offset : offset+termLen])
			offset += termLen

			// Read frequency
			freq := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4

			docStats.TermFreqs[term] = freq
		}

		idx.DocStats[docID] = docStats
	}

	return offset, nil
}

// indexDecoder tracks position while reading the posting-list section.
type indexDecoder struct {
	data   []byte
	offset int
}

func newIndexDecoder(data []byte, offset int) *indexDecoder {
	return &indexDecoder{
		data:   data,
		offset: offset,
	}
}

// isComplete reports whether the decoder has consumed the whole buffer.
func (d *indexDecoder) isComplete() bool {
	return d.offset >= len(d.data)
}

// decodeTerm reads one term's name and skip list: positions first, then the
// tower pointers that link the position nodes back together.
func (d *indexDecoder) decodeTerm() (string, SkipList, error) {
	term, err := d.readString()
	if err != nil {
		return "", SkipList{}, err
	}

	nodeMap, err := d.decodeNodePositions()
	if err != nil {
		return "", SkipList{}, err
	}

	height, err := d.decodeTowerStructure(nodeMap)
	if err != nil {
		return "", SkipList{}, err
	}

	skipList := SkipList{
		Head:   nodeMap[1], // first node is always at index 1
		Height: height,
	}

	return term, skipList, nil
}

// readString reads a length-prefixed string: [length uint32][bytes].
func (d *indexDecoder) readString() (string, error) {
	length := int(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
	d.offset += 4

	str := string(d.data[d.offset : d.offset+length])
	d.offset += length

	return str, nil
}

// decodeNodePositions reads the [DocID int32][Offset int32] pairs written by
// encodeNodePositions and builds one Node per pair, keyed by the same
// sequential index (1, 2, ...) buildNodeIndexMap assigned on encode.
func (d *indexDecoder) decodeNodePositions() (map[int]*Node, error) {
	dataLength := int(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
	d.offset += 4

	nodeMap := make(map[int]*Node)
	nodeIndex := 1

	// Each position is two int32s, so dataLength/4 gives the total int32
	// count and we consume them in pairs.
	numValues := dataLength / 4

	for i := 0; i < numValues; i += 2 {
		docID := int32(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
		d.offset += 4

		offset := int32(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
		d.offset += 4

		node := &Node{
			Key: Position{
				DocumentID: float64(docID),
				Offset:     float64(offset),
			},
		}

		nodeMap[nodeIndex] = node
		nodeIndex++
	}

	return nodeMap, nil
}

// decodeTowerStructure reads each node's tower indices (written by
// encodeTowerForNode) and relinks the nodes in nodeMap accordingly, returning
// the tallest tower height seen.
func (d *indexDecoder) decodeTowerStructure(nodeMap map[int]*Node) (int, error) {
	maxHeight := 1
	nodeCount := len(nodeMap)

	for nodeIndex := 1; nodeIndex <= nodeCount; nodeIndex++ {
		towerLength := int(binary.LittleEndian.Uint32(d.data[d.offset : d.offset+4]))
		d.offset += 4

		numIndices := towerLength / 2

		for level := 0; level < numIndices; level++ {
			targetIndex := int(binary.LittleEndian.Uint16(d.data[d.offset : d.offset+2]))
			d.offset += 2

			// A target index of 0 means nil (end of tower).
			if targetIndex != 0 {
				nodeMap[nodeIndex].Tower[level] = nodeMap[targetIndex]

				if level+1 > maxHeight {
					maxHeight = level + 1
				}
			}
		}
	}

	return maxHeight, nil
}
