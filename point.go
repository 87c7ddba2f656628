package influx

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	lp "github.com/influxdata/line-protocol"
)

// Point represents a single InfluxDB data point, holding tags and fields
type Point struct {
	measurement string
	tags        []*lp.Tag
	fields      []*lp.Field
	timestamp   time.Time
}

// NewPointWithMeasurement creates an empty Point with just a measurement name,
// to be filled via AddTag and AddField.
func NewPointWithMeasurement(measurement string) *Point {
	return &Point{measurement: measurement}
}

// NewPoint creates a *Point from measurement name, tags, fields and a timestamp.
// Pass a zero time.Time to let the server assign the ingestion time.
func NewPoint(
	measurement string,
	tags map[string]string,
	fields map[string]interface{},
	ts time.Time,
) *Point {
	m := &Point{
		measurement: measurement,
		timestamp:   ts,
	}

	if len(tags) > 0 {
		m.tags = make([]*lp.Tag, 0, len(tags))
		for k, v := range tags {
			m.tags = append(m.tags, &lp.Tag{Key: k, Value: v})
		}
	}

	m.fields = make([]*lp.Field, 0, len(fields))
	for k, v := range fields {
		m.fields = append(m.fields, &lp.Field{Key: k, Value: v})
	}
	// tags and fields are sorted client-side to take load off the server
	m.SortTags()
	m.SortFields()
	return m
}

// Name returns the measurement name of the point.
func (m *Point) Name() string {
	return m.measurement
}

// TagList returns a slice containing the tags of the point.
func (m *Point) TagList() []*lp.Tag {
	return m.tags
}

// FieldList returns a slice containing the fields of the point.
func (m *Point) FieldList() []*lp.Field {
	return m.fields
}

// SetTime sets the timestamp of the point.
func (m *Point) SetTime(timestamp time.Time) {
	m.timestamp = timestamp
}

// Time is the timestamp of the point.
func (m *Point) Time() time.Time {
	return m.timestamp
}

// AddTag adds a tag to the point, replacing any tag with the same key.
// Call SortTags afterwards to keep the tag set ordered.
func (m *Point) AddTag(k, v string) {
	for i, tag := range m.tags {
		if k == tag.Key {
			m.tags[i].Value = v
			return
		}
	}
	m.tags = append(m.tags, &lp.Tag{Key: k, Value: v})
}

// AddField adds a field to the point, replacing any field with the same key.
// Call SortFields afterwards to keep the field set ordered.
func (m *Point) AddField(k string, v interface{}) {
	for i, field := range m.fields {
		if k == field.Key {
			m.fields[i].Value = v
			return
		}
	}
	m.fields = append(m.fields, &lp.Field{Key: k, Value: v})
}

// SortTags orders the tags of the point alphanumerically by key.
func (m *Point) SortTags() {
	sort.Slice(m.tags, func(i, j int) bool { return m.tags[i].Key < m.tags[j].Key })
}

// SortFields orders the fields of the point alphanumerically by key.
func (m *Point) SortFields() {
	sort.Slice(m.fields, func(i, j int) bool { return m.fields[i].Key < m.fields[j].Key })
}

// ToLineProtocolBuffer renders the point as one line-protocol record into sb,
// converting the associated timestamp according to precision.
// Returns *ValidationError without writing a complete line when the point
// violates the line-protocol contract.
func (m *Point) ToLineProtocolBuffer(sb *strings.Builder, precision time.Duration) error {
	if m.measurement == "" {
		return &ValidationError{Message: "measurement name is required"}
	}
	if len(m.fields) == 0 {
		return &ValidationError{Message: "point must have at least one field"}
	}
	escapeMeasurement(sb, m.measurement)
	for _, t := range m.tags {
		sb.WriteByte(',')
		escapeKey(sb, t.Key)
		sb.WriteByte('=')
		escapeKey(sb, t.Value)
	}
	sb.WriteByte(' ')
	for i, f := range m.fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		escapeKey(sb, f.Key)
		sb.WriteByte('=')
		v, err := convertField(f.Value)
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case string:
			sb.WriteByte('"')
			escapeStringField(sb, v)
			sb.WriteByte('"')
		case int64:
			sb.WriteString(strconv.FormatInt(v, 10))
			sb.WriteByte('i')
		case float64:
			sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			if v {
				sb.WriteByte('t')
			} else {
				sb.WriteByte('f')
			}
		}
	}
	if !m.timestamp.IsZero() {
		sb.WriteByte(' ')
		switch precision {
		case time.Microsecond:
			sb.WriteString(strconv.FormatInt(m.timestamp.UnixNano()/1000, 10))
		case time.Millisecond:
			sb.WriteString(strconv.FormatInt(m.timestamp.UnixNano()/1000000, 10))
		case time.Second:
			sb.WriteString(strconv.FormatInt(m.timestamp.Unix(), 10))
		default:
			sb.WriteString(strconv.FormatInt(m.timestamp.UnixNano(), 10))
		}
	}
	sb.WriteByte('\n')
	return nil
}

// ToLineProtocol renders the point as one line-protocol record, converting the
// associated timestamp according to precision.
func (m *Point) ToLineProtocol(precision time.Duration) (string, error) {
	var sb strings.Builder
	sb.Grow(1024)
	if err := m.ToLineProtocolBuffer(&sb, precision); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// convertField normalizes a field value to one of the four wire kinds:
// float64, int64, string or bool.
func convertField(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case bool, int64, string, float64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, &ValidationError{Message: fmt.Sprintf("unsigned field value %d overflows the integer range", v)}
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		// the wire format has no unsigned suffix
		if v > math.MaxInt64 {
			return nil, &ValidationError{Message: fmt.Sprintf("unsigned field value %d overflows the integer range", v)}
		}
		return int64(v), nil
	case float32:
		return float64(v), nil
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unsupported field value type %T", v)}
	}
}

func escapeMeasurement(sb *strings.Builder, name string) {
	for _, r := range name {
		switch r {
		case ' ', ',':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
}

func escapeKey(sb *strings.Builder, key string) {
	for _, r := range key {
		switch r {
		case ' ', ',', '=':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
}

func escapeStringField(sb *strings.Builder, value string) {
	for _, r := range value {
		switch r {
		case '\\', '"':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
}
