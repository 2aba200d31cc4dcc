package core

import (
	"errors"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. Field order
// follows struct order; times are encoded as Unix microseconds, floats as
// their IEEE-754 bit patterns.

// Serializers for persisted domain types.
var (
	IDMUS                 = idSer{}
	TimeMUS               = timeSer{}
	DocumentMUS           = documentSer{}
	ChunkMUS              = chunkSer{}
	ExtractedIndicatorMUS = extractedIndicatorSer{}
	ESGScoreMUS           = esgScoreSer{}
	ReadinessMUS          = readinessSer{}
)

var errNegativeLength = errors.New("mus: negative length")

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalFloat64(f float64, bs []byte) int {
	return varint.Uint64.Marshal(math.Float64bits(f), bs)
}

func unmarshalFloat64(bs []byte) (float64, int, error) {
	bits, n, err := varint.Uint64.Unmarshal(bs)
	return math.Float64frombits(bits), n, err
}

func sizeFloat64(f float64) int {
	return varint.Uint64.Size(math.Float64bits(f))
}

// sliceLen decodes and bounds-checks a slice length prefix. Every element
// costs at least one byte, so a length beyond the remaining buffer is corrupt
// input, rejected before allocation.
func sliceLen(bs []byte) (int, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if length < 0 || length > len(bs)-n {
		return 0, n, errNegativeLength
	}
	return length, n, nil
}

func marshalFloat32Slice(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalFloat32Slice(bs []byte) (v []float32, n int, err error) {
	length, n, err := sliceLen(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := range v {
		bits, n1, err := varint.Uint32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[i] = math.Float32frombits(bits)
	}
	return v, n, nil
}

func sizeFloat32Slice(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

func marshalIntSlice(v []int, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, e := range v {
		n += varint.Int.Marshal(e, bs[n:])
	}
	return n
}

func unmarshalIntSlice(bs []byte) (v []int, n int, err error) {
	length, n, err := sliceLen(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]int, length)
	for i := range v {
		e, n1, err := varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[i] = e
	}
	return v, n, nil
}

func sizeIntSlice(v []int) (size int) {
	size = varint.Int.Size(len(v))
	for _, e := range v {
		size += varint.Int.Size(e)
	}
	return size
}

func marshalIDSlice(v []ID, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, id := range v {
		n += IDMUS.Marshal(id, bs[n:])
	}
	return n
}

func unmarshalIDSlice(bs []byte) (v []ID, n int, err error) {
	length, n, err := sliceLen(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]ID, length)
	for i := range v {
		id, n1, err := IDMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[i] = id
	}
	return v, n, nil
}

func sizeIDSlice(v []ID) (size int) {
	size = varint.Int.Size(len(v))
	for _, id := range v {
		size += IDMUS.Size(id)
	}
	return size
}

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := sliceLen(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]string, length)
	for i := range v {
		s, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v[i] = s
	}
	return v, n, nil
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

type documentSer struct{}

func (documentSer) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Key, bs)
	n += ord.String.Marshal(d.Company, bs[n:])
	n += varint.Int.Marshal(d.ReportYear, bs[n:])
	n += ord.String.Marshal(d.SourceURL, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += varint.Int.Marshal(d.Pages, bs[n:])
	n += varint.Int.Marshal(d.ChunkCount, bs[n:])
	n += TimeMUS.Marshal(d.IngestedAt, bs[n:])
	n += TimeMUS.Marshal(d.UpdatedAt, bs[n:])
	return n
}

func (documentSer) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Key, n, err = IDMUS.Unmarshal(bs); err != nil {
		return d, n, err
	}
	if d.Company, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ReportYear, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.SourceURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Pages, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.IngestedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (documentSer) Size(d Document) (size int) {
	size = IDMUS.Size(d.Key)
	size += ord.String.Size(d.Company)
	size += varint.Int.Size(d.ReportYear)
	size += ord.String.Size(d.SourceURL)
	size += ord.String.Size(d.Title)
	size += varint.Int.Size(d.Pages)
	size += varint.Int.Size(d.ChunkCount)
	size += TimeMUS.Size(d.IngestedAt)
	size += TimeMUS.Size(d.UpdatedAt)
	return size
}

type chunkSer struct{}

func (chunkSer) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.DocumentKey, bs)
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += varint.Int.Marshal(c.Page, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += marshalFloat32Slice(c.Vector, bs[n:])
	n += TimeMUS.Marshal(c.EmbeddedAt, bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.DocumentKey, n, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n, err
	}
	if c.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Page, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = unmarshalFloat32Slice(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.EmbeddedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkSer) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.DocumentKey)
	size += varint.Int.Size(c.Index)
	size += varint.Int.Size(c.Page)
	size += ord.String.Size(c.Text)
	size += sizeFloat32Slice(c.Vector)
	size += TimeMUS.Size(c.EmbeddedAt)
	return size
}

type extractedIndicatorSer struct{}

func (extractedIndicatorSer) Marshal(ind ExtractedIndicator, bs []byte) (n int) {
	n = IDMUS.Marshal(ind.DocumentKey, bs)
	n += ord.String.Marshal(ind.Code, bs[n:])
	n += ord.String.Marshal(ind.RawValue, bs[n:])
	n += marshalFloat64(ind.NumericValue, bs[n:])
	n += ord.Bool.Marshal(ind.HasNumeric, bs[n:])
	n += marshalFloat64(ind.Confidence, bs[n:])
	n += marshalIntSlice(ind.SourcePages, bs[n:])
	n += marshalIDSlice(ind.SourceChunks, bs[n:])
	n += TimeMUS.Marshal(ind.ExtractedAt, bs[n:])
	return n
}

func (extractedIndicatorSer) Unmarshal(bs []byte) (ind ExtractedIndicator, n int, err error) {
	var n1 int
	if ind.DocumentKey, n, err = IDMUS.Unmarshal(bs); err != nil {
		return ind, n, err
	}
	if ind.Code, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.RawValue, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.NumericValue, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.HasNumeric, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.Confidence, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.SourcePages, n1, err = unmarshalIntSlice(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.SourceChunks, n1, err = unmarshalIDSlice(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	if ind.ExtractedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return ind, n + n1, err
	}
	n += n1
	return ind, n, nil
}

func (extractedIndicatorSer) Size(ind ExtractedIndicator) (size int) {
	size = IDMUS.Size(ind.DocumentKey)
	size += ord.String.Size(ind.Code)
	size += ord.String.Size(ind.RawValue)
	size += sizeFloat64(ind.NumericValue)
	size += ord.Bool.Size(ind.HasNumeric)
	size += sizeFloat64(ind.Confidence)
	size += sizeIntSlice(ind.SourcePages)
	size += sizeIDSlice(ind.SourceChunks)
	size += TimeMUS.Size(ind.ExtractedAt)
	return size
}

type readinessSer struct{}

func (readinessSer) Marshal(r Readiness, bs []byte) (n int) {
	n = ord.Bool.Marshal(r.Ready, bs)
	n += varint.Int.Marshal(r.EmbeddedChunks, bs[n:])
	n += varint.Int.Marshal(r.ExpectedChunks, bs[n:])
	n += TimeMUS.Marshal(r.LastVectorAt, bs[n:])
	return n
}

func (readinessSer) Unmarshal(bs []byte) (r Readiness, n int, err error) {
	var n1 int
	if r.Ready, n, err = ord.Bool.Unmarshal(bs); err != nil {
		return r, n, err
	}
	if r.EmbeddedChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.ExpectedChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.LastVectorAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	return r, n, nil
}

func (readinessSer) Size(r Readiness) (size int) {
	size = ord.Bool.Size(r.Ready)
	size += varint.Int.Size(r.EmbeddedChunks)
	size += varint.Int.Size(r.ExpectedChunks)
	size += TimeMUS.Size(r.LastVectorAt)
	return size
}

type pillarScoreSer struct{}

func (pillarScoreSer) Marshal(ps PillarScore, bs []byte) (n int) {
	n = ord.String.Marshal(string(ps.Pillar), bs)
	n += marshalFloat64(ps.Score, bs[n:])
	n += marshalFloat64(ps.TotalWeight, bs[n:])
	n += marshalStringSlice(ps.IndicatorsUsed, bs[n:])
	return n
}

func (pillarScoreSer) Unmarshal(bs []byte) (ps PillarScore, n int, err error) {
	var n1 int
	var p string
	if p, n, err = ord.String.Unmarshal(bs); err != nil {
		return ps, n, err
	}
	ps.Pillar = Pillar(p)
	if ps.Score, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return ps, n + n1, err
	}
	n += n1
	if ps.TotalWeight, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return ps, n + n1, err
	}
	n += n1
	if ps.IndicatorsUsed, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return ps, n + n1, err
	}
	n += n1
	return ps, n, nil
}

func (pillarScoreSer) Size(ps PillarScore) (size int) {
	size = ord.String.Size(string(ps.Pillar))
	size += sizeFloat64(ps.Score)
	size += sizeFloat64(ps.TotalWeight)
	size += sizeStringSlice(ps.IndicatorsUsed)
	return size
}

type pillarWeightSer struct{}

func (pillarWeightSer) Marshal(pw PillarWeight, bs []byte) (n int) {
	n = ord.String.Marshal(string(pw.Pillar), bs)
	n += marshalFloat64(pw.Weight, bs[n:])
	return n
}

func (pillarWeightSer) Unmarshal(bs []byte) (pw PillarWeight, n int, err error) {
	var n1 int
	var p string
	if p, n, err = ord.String.Unmarshal(bs); err != nil {
		return pw, n, err
	}
	pw.Pillar = Pillar(p)
	if pw.Weight, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return pw, n + n1, err
	}
	n += n1
	return pw, n, nil
}

func (pillarWeightSer) Size(pw PillarWeight) (size int) {
	size = ord.String.Size(string(pw.Pillar))
	size += sizeFloat64(pw.Weight)
	return size
}

type contributionSer struct{}

func (contributionSer) Marshal(c IndicatorContribution, bs []byte) (n int) {
	n = ord.String.Marshal(c.Code, bs)
	n += ord.String.Marshal(string(c.Pillar), bs[n:])
	n += ord.String.Marshal(c.RawValue, bs[n:])
	n += marshalFloat64(c.NumericValue, bs[n:])
	n += marshalFloat64(c.Normalized, bs[n:])
	n += marshalFloat64(c.Weight, bs[n:])
	n += marshalFloat64(c.Confidence, bs[n:])
	n += marshalIntSlice(c.SourcePages, bs[n:])
	n += marshalIDSlice(c.SourceChunks, bs[n:])
	return n
}

func (contributionSer) Unmarshal(bs []byte) (c IndicatorContribution, n int, err error) {
	var n1 int
	if c.Code, n, err = ord.String.Unmarshal(bs); err != nil {
		return c, n, err
	}
	var p string
	if p, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	c.Pillar = Pillar(p)
	if c.RawValue, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.NumericValue, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Normalized, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Weight, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Confidence, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.SourcePages, n1, err = unmarshalIntSlice(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.SourceChunks, n1, err = unmarshalIDSlice(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (contributionSer) Size(c IndicatorContribution) (size int) {
	size = ord.String.Size(c.Code)
	size += ord.String.Size(string(c.Pillar))
	size += ord.String.Size(c.RawValue)
	size += sizeFloat64(c.NumericValue)
	size += sizeFloat64(c.Normalized)
	size += sizeFloat64(c.Weight)
	size += sizeFloat64(c.Confidence)
	size += sizeIntSlice(c.SourcePages)
	size += sizeIDSlice(c.SourceChunks)
	return size
}

type esgScoreSer struct{}

func (esgScoreSer) Marshal(s ESGScore, bs []byte) (n int) {
	n = ord.String.Marshal(s.Company, bs)
	n += varint.Int.Marshal(s.ReportYear, bs[n:])
	n += IDMUS.Marshal(s.DocumentKey, bs[n:])
	n += varint.Int.Marshal(len(s.Pillars), bs[n:])
	for _, ps := range s.Pillars {
		n += pillarScoreSer{}.Marshal(ps, bs[n:])
	}
	n += marshalFloat64(s.Overall, bs[n:])
	n += varint.Int.Marshal(len(s.Weights), bs[n:])
	for _, pw := range s.Weights {
		n += pillarWeightSer{}.Marshal(pw, bs[n:])
	}
	n += varint.Int.Marshal(len(s.Contributions), bs[n:])
	for _, c := range s.Contributions {
		n += contributionSer{}.Marshal(c, bs[n:])
	}
	n += ord.String.Marshal(s.RunID, bs[n:])
	n += TimeMUS.Marshal(s.ComputedAt, bs[n:])
	return n
}

func (esgScoreSer) Unmarshal(bs []byte) (s ESGScore, n int, err error) {
	var n1 int
	if s.Company, n, err = ord.String.Unmarshal(bs); err != nil {
		return s, n, err
	}
	if s.ReportYear, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	if s.DocumentKey, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1

	length, n1, err := sliceLen(bs[n:])
	if err != nil {
		return s, n + n1, err
	}
	n += n1
	if length > 0 {
		s.Pillars = make([]PillarScore, length)
		for i := range s.Pillars {
			if s.Pillars[i], n1, err = (pillarScoreSer{}).Unmarshal(bs[n:]); err != nil {
				return s, n + n1, err
			}
			n += n1
		}
	}

	if s.Overall, n1, err = unmarshalFloat64(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1

	if length, n1, err = sliceLen(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	if length > 0 {
		s.Weights = make([]PillarWeight, length)
		for i := range s.Weights {
			if s.Weights[i], n1, err = (pillarWeightSer{}).Unmarshal(bs[n:]); err != nil {
				return s, n + n1, err
			}
			n += n1
		}
	}

	if length, n1, err = sliceLen(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	if length > 0 {
		s.Contributions = make([]IndicatorContribution, length)
		for i := range s.Contributions {
			if s.Contributions[i], n1, err = (contributionSer{}).Unmarshal(bs[n:]); err != nil {
				return s, n + n1, err
			}
			n += n1
		}
	}

	if s.RunID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	if s.ComputedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + n1, err
	}
	n += n1
	return s, n, nil
}

func (esgScoreSer) Size(s ESGScore) (size int) {
	size = ord.String.Size(s.Company)
	size += varint.Int.Size(s.ReportYear)
	size += IDMUS.Size(s.DocumentKey)
	size += varint.Int.Size(len(s.Pillars))
	for _, ps := range s.Pillars {
		size += pillarScoreSer{}.Size(ps)
	}
	size += sizeFloat64(s.Overall)
	size += varint.Int.Size(len(s.Weights))
	for _, pw := range s.Weights {
		size += pillarWeightSer{}.Size(pw)
	}
	size += varint.Int.Size(len(s.Contributions))
	for _, c := range s.Contributions {
		size += contributionSer{}.Size(c)
	}
	size += ord.String.Size(s.RunID)
	size += TimeMUS.Size(s.ComputedAt)
	return size
}
