package planogram

// FieldSpec declares one per-sensor input collection: the payload field
// holds a map of sensor name to value, each value checked against Kind and
// emitted as one ConfigEntry with the given param.
type FieldSpec struct {
	Field      string
	Param      string
	Kind       Kind
	ConfigKind string
}

// ScalarSpec declares a single pass-through value bound to a fixed sensor,
// for device families whose payloads are flat rather than per-sensor maps.
type ScalarSpec struct {
	Field      string
	Sensor     string
	Param      string
	Kind       Kind
	ConfigKind string
	Required   bool
}

// Family is a closed device-family variant: its declared field table is
// data, selected by tag, never inferred from payload keys at runtime.
type Family struct {
	Name          string
	Envelope      Envelope
	Fields        []FieldSpec
	Scalars       []ScalarSpec
	GroupBySensor bool
}

// slotFields is the shared per-sensor table for slot-based vending
// machines. Field order is load-bearing: firmware applies entries in the
// order they arrive, and selection/active must land after the product data
// they refer to.
var slotFields = []FieldSpec{
	{Field: "ids", Param: "id", Kind: KindString},
	{Field: "names", Param: "name", Kind: KindString},
	{Field: "values", Param: "value", Kind: KindString},
	{Field: "types", Param: "type", Kind: KindString},
	{Field: "prices", Param: "price", Kind: KindNumber},
	{Field: "stocks", Param: "stock", Kind: KindNumber},
	{Field: "selections", Param: "selection", Kind: KindString},
	{Field: "actives", Param: "active", Kind: KindBoolean},
}

var (
	// FamilyComboPorto covers combo vending cabinets whose bridge ships
	// payloads base64-wrapped.
	FamilyComboPorto = Family{
		Name:     "combo-porto",
		Envelope: EnvelopeBase64,
		Fields:   slotFields,
	}

	// FamilyMcPro covers the MC Pro cabinet line; same slot layout as the
	// combo machines, plain JSON transport.
	FamilyMcPro = Family{
		Name:     "mc-pro",
		Envelope: EnvelopeNone,
		Fields:   slotFields,
	}

	// FamilyPlayStation covers rental kiosks: per-station maps plus a
	// single session timeout shared by all stations.
	FamilyPlayStation = Family{
		Name:     "playstation",
		Envelope: EnvelopeNone,
		Fields: []FieldSpec{
			{Field: "names", Param: "name", Kind: KindString},
			{Field: "prices", Param: "price", Kind: KindNumber},
			{Field: "stocks", Param: "stock", Kind: KindNumber},
			{Field: "actives", Param: "active", Kind: KindBoolean},
		},
		Scalars: []ScalarSpec{
			{Field: "timeout", Sensor: "playstation", Param: "timeout", Kind: KindNumber},
		},
	}

	// FamilyWaterDispenser is entirely flat: five mandatory scalars on two
	// fixed sensors. Cup stock lives in the device's cdata storage class.
	FamilyWaterDispenser = Family{
		Name:     "water-dispenser",
		Envelope: EnvelopeNone,
		Scalars: []ScalarSpec{
			{Field: "durationWater", Sensor: "water", Param: "duration", Kind: KindNumber, Required: true},
			{Field: "priceWater", Sensor: "water", Param: "price", Kind: KindNumber, Required: true},
			{Field: "durationCup", Sensor: "water_cup", Param: "duration", Kind: KindNumber, Required: true},
			{Field: "priceCup", Sensor: "water_cup", Param: "price", Kind: KindNumber, Required: true},
			{Field: "stockCup", Sensor: "water_cup", Param: "stock", Kind: KindNumber, ConfigKind: "cdata", Required: true},
		},
	}

	// FamilyArcade sets the coin pulse factor together with its price
	// table; the price table is an opaque object the cabinet interprets.
	FamilyArcade = Family{
		Name:     "arcade",
		Envelope: EnvelopeNone,
		Scalars: []ScalarSpec{
			{Field: "pulse", Sensor: "arcade", Param: "pulse_factor", Kind: KindNumber, Required: true},
			{Field: "price", Sensor: "arcade", Param: "price", Kind: KindObject, Required: true},
		},
	}

	// FamilyCoffeeFranke requires one command per ingredient line: the
	// machine rejects batches that mix sensors, so entries are partitioned
	// and dispatched per sensor.
	FamilyCoffeeFranke = Family{
		Name:     "coffee-franke",
		Envelope: EnvelopeNone,
		Fields: []FieldSpec{
			{Field: "names", Param: "name", Kind: KindString},
			{Field: "prices", Param: "price", Kind: KindNumber},
			{Field: "stocks", Param: "stock", Kind: KindNumber},
			{Field: "actives", Param: "active", Kind: KindBoolean},
			{Field: "recipes", Param: "recipe", Kind: KindObject},
		},
		GroupBySensor: true,
	}
)
