package protocol

import "math"

// RawEvent is the generic shape of an unsolicited stream push: exactly one
// of the per-stream fields is populated, depending on which stream the
// subscription carries. The reader loop uses this to pick a stream kind
// before handing the raw array off to the matching parse function.
type RawEvent struct {
	Sid  string  `json:"sid"`
	Time float64 `json:"time"`

	EEG []any     `json:"eeg,omitempty"`
	Dev []any     `json:"dev,omitempty"`
	Mot []float64 `json:"mot,omitempty"`
	Eq  []any     `json:"eq,omitempty"`
	Pow []float64 `json:"pow,omitempty"`
	Met []any     `json:"met,omitempty"`
	Com []any     `json:"com,omitempty"`
	Fac []any     `json:"fac,omitempty"`
	Sys []any     `json:"sys,omitempty"`
}

// Kind reports which stream this event belongs to, or "" if none of the
// known stream keys are present.
func (e *RawEvent) Kind() string {
	switch {
	case e.EEG != nil:
		return StreamEEG
	case e.Dev != nil:
		return StreamDev
	case e.Mot != nil:
		return StreamMot
	case e.Eq != nil:
		return StreamEq
	case e.Pow != nil:
		return StreamPow
	case e.Met != nil:
		return StreamMet
	case e.Com != nil:
		return StreamCom
	case e.Fac != nil:
		return StreamFac
	case e.Sys != nil:
		return StreamSys
	default:
		return ""
	}
}

// f64ToF32 narrows a float64 to float32, rejecting non-finite inputs the
// way the upstream protocol does (NaN/Inf never appear on the wire in a
// well-formed sample).
func f64ToF32(v float64) (float32, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return float32(v), true
}

// secondsToMicros converts a Cortex Unix-seconds-as-float64 timestamp to
// microseconds, rounding to the nearest integer.
func secondsToMicros(seconds float64) (int64, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, false
	}
	micros := seconds * 1_000_000.0
	if math.IsNaN(micros) || math.IsInf(micros, 0) {
		return 0, false
	}
	return int64(math.Round(micros)), true
}

func asFloat64(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// EEGSample is parsed per-sample EEG channel data from the "eeg" stream.
type EEGSample struct {
	Timestamp    int64
	Counter      uint32
	Interpolated bool
	Channels     []float32
	RawCQ        float32
}

// ParseEEGSample parses a RawEvent.EEG array with layout
// [COUNTER, INTERPOLATED, ch1, .., chN, RAW_CQ, MARKER_HARDWARE, MARKERS].
func ParseEEGSample(eeg []any, numChannels int, timestamp float64) (*EEGSample, bool) {
	if len(eeg) < 2+numChannels+3 {
		return nil, false
	}
	counterF, ok := asFloat64(eeg[0])
	if !ok || counterF < 0 {
		return nil, false
	}
	interpolatedF, ok := asFloat64(eeg[1])
	if !ok {
		return nil, false
	}

	channels := make([]float32, numChannels)
	for i := 0; i < numChannels; i++ {
		v, ok := asFloat64(eeg[2+i])
		if !ok {
			return nil, false
		}
		ch, ok := f64ToF32(v)
		if !ok {
			return nil, false
		}
		channels[i] = ch
	}

	rawCQF, ok := asFloat64(eeg[2+numChannels])
	if !ok {
		return nil, false
	}
	rawCQ, ok := f64ToF32(rawCQF)
	if !ok {
		return nil, false
	}

	ts, ok := secondsToMicros(timestamp)
	if !ok {
		return nil, false
	}

	return &EEGSample{
		Timestamp:    ts,
		Counter:      uint32(counterF),
		Interpolated: interpolatedF != 0,
		Channels:     channels,
		RawCQ:        rawCQ,
	}, true
}

// DeviceQualitySample is parsed battery/contact-quality data from the
// "dev" stream, normalized to 0.0-1.0 from Cortex's 0-4 / 0-100 scales.
type DeviceQualitySample struct {
	BatteryLevel    uint8
	SignalStrength  float32
	ChannelQuality  []float32
	OverallQuality  float32
	BatteryPercent  uint8
}

// ParseDeviceQualitySample parses a RawEvent.Dev array with layout
// [battery, signal, ch1_cq, .., chN_cq, overall, battery_pct].
func ParseDeviceQualitySample(dev []any, numChannels int) (*DeviceQualitySample, bool) {
	if len(dev) < 2+numChannels+2 {
		return nil, false
	}
	batteryF, ok := asFloat64(dev[0])
	if !ok {
		return nil, false
	}
	signalF, ok := asFloat64(dev[1])
	if !ok {
		return nil, false
	}
	signal, ok := f64ToF32(signalF)
	if !ok {
		return nil, false
	}

	quality := make([]float32, numChannels)
	for i := 0; i < numChannels; i++ {
		v, ok := asFloat64(dev[2+i])
		if !ok {
			return nil, false
		}
		q, ok := f64ToF32(v / 4.0)
		if !ok {
			return nil, false
		}
		quality[i] = q
	}

	overallIdx := 2 + numChannels
	batteryPctIdx := overallIdx + 1
	overallF, ok := asFloat64(dev[overallIdx])
	if !ok {
		return nil, false
	}
	overall, ok := f64ToF32(overallF / 100.0)
	if !ok {
		return nil, false
	}
	batteryPctF, ok := asFloat64(dev[batteryPctIdx])
	if !ok {
		return nil, false
	}

	return &DeviceQualitySample{
		BatteryLevel:   uint8(batteryF),
		SignalStrength: signal,
		ChannelQuality: quality,
		OverallQuality: overall,
		BatteryPercent: uint8(batteryPctF),
	}, true
}

// MotionSample is parsed IMU data from the "mot" stream.
type MotionSample struct {
	Timestamp     int64
	Quaternion    *[4]float32
	Accelerometer [3]float32
	Magnetometer  [3]float32
}

// ParseMotionSample parses a RawEvent.Mot array with layout
// [COUNTER, INTERPOLATED, Q0, Q1, Q2, Q3, ACCX, ACCY, ACCZ, MAGX, MAGY, MAGZ].
func ParseMotionSample(mot []float64, timestamp float64) (*MotionSample, bool) {
	if len(mot) < 12 {
		return nil, false
	}
	var q [4]float32
	for i := 0; i < 4; i++ {
		v, ok := f64ToF32(mot[2+i])
		if !ok {
			return nil, false
		}
		q[i] = v
	}
	var acc [3]float32
	for i := 0; i < 3; i++ {
		v, ok := f64ToF32(mot[6+i])
		if !ok {
			return nil, false
		}
		acc[i] = v
	}
	var mag [3]float32
	for i := 0; i < 3; i++ {
		v, ok := f64ToF32(mot[9+i])
		if !ok {
			return nil, false
		}
		mag[i] = v
	}
	ts, ok := secondsToMicros(timestamp)
	if !ok {
		return nil, false
	}
	return &MotionSample{Timestamp: ts, Quaternion: &q, Accelerometer: acc, Magnetometer: mag}, true
}

// EEGQualitySample is parsed per-sensor signal quality from the "eq" stream.
type EEGQualitySample struct {
	BatteryPercent    uint8
	Overall           float32
	SampleRateQuality float32
	SensorQuality     []float32
}

// ParseEEGQualitySample parses a RawEvent.Eq array with layout
// [battery, overall, sr_quality, ch1_q, .., chN_q].
func ParseEEGQualitySample(eq []any, numChannels int) (*EEGQualitySample, bool) {
	if len(eq) < 3+numChannels {
		return nil, false
	}
	batteryF, ok := asFloat64(eq[0])
	if !ok {
		return nil, false
	}
	overallF, ok := asFloat64(eq[1])
	if !ok {
		return nil, false
	}
	overall, ok := f64ToF32(overallF / 100.0)
	if !ok {
		return nil, false
	}
	srF, ok := asFloat64(eq[2])
	if !ok {
		return nil, false
	}
	sr, ok := f64ToF32(srF)
	if !ok {
		return nil, false
	}
	sensors := make([]float32, numChannels)
	for i := 0; i < numChannels; i++ {
		v, ok := asFloat64(eq[3+i])
		if !ok {
			return nil, false
		}
		q, ok := f64ToF32(v / 4.0)
		if !ok {
			return nil, false
		}
		sensors[i] = q
	}
	return &EEGQualitySample{
		BatteryPercent:    uint8(batteryF),
		Overall:           overall,
		SampleRateQuality: sr,
		SensorQuality:     sensors,
	}, true
}

// BandPowerSample is parsed per-channel frequency-band power from the
// "pow" stream. Bands per channel are [theta, alpha, betaL, betaH, gamma]
// in uV^2/Hz.
type BandPowerSample struct {
	Timestamp     int64
	ChannelPowers [][5]float32
}

// ParseBandPowerSample parses a RawEvent.Pow array, a flat list of 5 values
// per channel.
func ParseBandPowerSample(pow []float64, numChannels int, timestamp float64) (*BandPowerSample, bool) {
	if len(pow) < numChannels*5 {
		return nil, false
	}
	channels := make([][5]float32, numChannels)
	for ch := 0; ch < numChannels; ch++ {
		base := ch * 5
		var bands [5]float32
		for b := 0; b < 5; b++ {
			v, ok := f64ToF32(pow[base+b])
			if !ok {
				return nil, false
			}
			bands[b] = v
		}
		channels[ch] = bands
	}
	ts, ok := secondsToMicros(timestamp)
	if !ok {
		return nil, false
	}
	return &BandPowerSample{Timestamp: ts, ChannelPowers: channels}, true
}

// PerformanceMetricsSample is parsed cognitive/emotional state data from
// the "met" stream. Each field is nil if Cortex reported insufficient
// signal quality for that metric.
type PerformanceMetricsSample struct {
	Timestamp      int64
	Engagement     *float32
	Excitement     *float32
	LongExcitement *float32
	Stress         *float32
	Relaxation     *float32
	Interest       *float32
	Attention      *float32
	Focus          *float32
}

// ParsePerformanceMetricsSample parses a RawEvent.Met array in the order
// [engagement, excitement, longExcitement, stress, relaxation, interest,
// attention, focus].
func ParsePerformanceMetricsSample(met []any, timestamp float64) (*PerformanceMetricsSample, bool) {
	ts, ok := secondsToMicros(timestamp)
	if !ok {
		return nil, false
	}
	at := func(i int) *float32 {
		if i >= len(met) {
			return nil
		}
		v, ok := asFloat64(met[i])
		if !ok {
			return nil
		}
		f, ok := f64ToF32(v)
		if !ok {
			return nil
		}
		return &f
	}
	return &PerformanceMetricsSample{
		Timestamp:      ts,
		Engagement:     at(0),
		Excitement:     at(1),
		LongExcitement: at(2),
		Stress:         at(3),
		Relaxation:     at(4),
		Interest:       at(5),
		Attention:      at(6),
		Focus:          at(7),
	}, true
}

// MentalCommandSample is a parsed detected mental command from the "com"
// stream.
type MentalCommandSample struct {
	Action string
	Power  float32
}

// ParseMentalCommandSample parses a RawEvent.Com array [action, power].
func ParseMentalCommandSample(com []any) (*MentalCommandSample, bool) {
	if len(com) < 2 {
		return nil, false
	}
	action, ok := asString(com[0])
	if !ok {
		return nil, false
	}
	powerF, ok := asFloat64(com[1])
	if !ok {
		return nil, false
	}
	power, ok := f64ToF32(powerF)
	if !ok {
		return nil, false
	}
	return &MentalCommandSample{Action: action, Power: power}, true
}

// FacialExpressionSample is a parsed facial expression reading from the
// "fac" stream.
type FacialExpressionSample struct {
	EyeAction       string
	UpperFaceAction string
	UpperFacePower  float32
	LowerFaceAction string
	LowerFacePower  float32
}

// ParseFacialExpressionSample parses a RawEvent.Fac array
// [eyeAction, upperFaceAction, upperFacePower, lowerFaceAction, lowerFacePower].
func ParseFacialExpressionSample(fac []any) (*FacialExpressionSample, bool) {
	if len(fac) < 5 {
		return nil, false
	}
	eye, ok := asString(fac[0])
	if !ok {
		return nil, false
	}
	upperAction, ok := asString(fac[1])
	if !ok {
		return nil, false
	}
	upperPowerF, ok := asFloat64(fac[2])
	if !ok {
		return nil, false
	}
	upperPower, ok := f64ToF32(upperPowerF)
	if !ok {
		return nil, false
	}
	lowerAction, ok := asString(fac[3])
	if !ok {
		return nil, false
	}
	lowerPowerF, ok := asFloat64(fac[4])
	if !ok {
		return nil, false
	}
	lowerPower, ok := f64ToF32(lowerPowerF)
	if !ok {
		return nil, false
	}
	return &FacialExpressionSample{
		EyeAction:       eye,
		UpperFaceAction: upperAction,
		UpperFacePower:  upperPower,
		LowerFaceAction: lowerAction,
		LowerFacePower:  lowerPower,
	}, true
}

// SystemEventSample is a parsed system-level notification from the "sys"
// stream, used during training for mental commands and facial expressions.
type SystemEventSample struct {
	EventType string
	Detail    []any
}

// ParseSystemEventSample parses a RawEvent.Sys array [event_type, ...detail].
func ParseSystemEventSample(sys []any) (*SystemEventSample, bool) {
	if len(sys) < 1 {
		return nil, false
	}
	eventType, ok := asString(sys[0])
	if !ok {
		return nil, false
	}
	return &SystemEventSample{EventType: eventType, Detail: sys[1:]}, true
}
