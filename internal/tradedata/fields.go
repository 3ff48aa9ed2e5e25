package tradedata

// Field names used in queries and clauses. The full set lives in fieldSpecs.
const (
	FieldCustomsCode     = "customs_code"
	FieldDate            = "date"
	FieldImporter        = "importer"
	FieldImporterCountry = "importer_country"
	FieldExporter        = "exporter"
	FieldExporterCountry = "exporter_country"
)

// dateMappingFormats lists the literal date formats the index accepts, so
// rows normalized from any supported source format index cleanly.
const dateMappingFormats = "yyyy-MM-dd||yyyy/MM/dd||yyyyMMdd"

type fieldKind int

const (
	kindKeyword fieldKind = iota
	kindText
	kindDate
	kindFloat
	kindCode // keyword truncated to the 6-character classification prefix
)

// fieldSpec binds a source column name to its normalization rule and its
// slot on CanonicalRecord. The accessor indirection keeps the cleaner free
// of per-field switch statements and makes a missing binding a compile error.
type fieldSpec struct {
	name string
	kind fieldKind
	str  func(*CanonicalRecord) **string
	num  func(*CanonicalRecord) **float64
}

// fieldSpecs declares the 37 required record fields in source column order.
var fieldSpecs = []fieldSpec{
	{name: FieldCustomsCode, kind: kindCode, str: func(r *CanonicalRecord) **string { return &r.CustomsCode }},
	{name: "product_description", kind: kindText, str: func(r *CanonicalRecord) **string { return &r.ProductDescription }},
	{name: FieldDate, kind: kindDate, str: func(r *CanonicalRecord) **string { return &r.Date }},
	{name: "month", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.Month }},
	{name: FieldImporter, kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.Importer }},
	{name: FieldImporterCountry, kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.ImporterCountry }},
	{name: FieldExporterCountry, kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.ExporterCountry }},
	{name: FieldExporter, kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.Exporter }},
	{name: "weight_unit", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.WeightUnit }},
	{name: "quantity_unit", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.QuantityUnit }},
	{name: "quantity", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.Quantity }},
	{name: "gross_weight", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.GrossWeight }},
	{name: "net_weight", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.NetWeight }},
	{name: "metric_tons", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.MetricTons }},
	{name: "amount_usd", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.AmountUSD }},
	{name: "unit_price_by_weight", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.UnitPriceByWeight }},
	{name: "unit_price_by_quantity", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.UnitPriceByQuantity }},
	{name: "local_currency_amount", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.LocalCurrencyAmount }},
	{name: "contract_amount", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.ContractAmount }},
	{name: "currency", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.Currency }},
	{name: "transaction_mode", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.TransactionMode }},
	{name: "detailed_product_name", kind: kindText, str: func(r *CanonicalRecord) **string { return &r.DetailedProductName }},
	{name: "product_spec_brand", kind: kindText, str: func(r *CanonicalRecord) **string { return &r.ProductSpecBrand }},
	{name: "local_port", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.LocalPort }},
	{name: "foreign_port", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.ForeignPort }},
	{name: "transport_mode", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.TransportMode }},
	{name: "trade_mode", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.TradeMode }},
	{name: "transit_country", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.TransitCountry }},
	{name: "bill_of_lading_no", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.BillOfLadingNo }},
	{name: "product_description_local", kind: kindText, str: func(r *CanonicalRecord) **string { return &r.ProductDescriptionLocal }},
	{name: "detailed_product_name_local", kind: kindText, str: func(r *CanonicalRecord) **string { return &r.DetailedProductNameLocal }},
	{name: "product_spec_brand_local", kind: kindText, str: func(r *CanonicalRecord) **string { return &r.ProductSpecBrandLocal }},
	{name: "importer_local_name", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.ImporterLocalName }},
	{name: "data_source", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.DataSource }},
	{name: "exporter_local_name", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.ExporterLocalName }},
	{name: "declaration_no", kind: kindKeyword, str: func(r *CanonicalRecord) **string { return &r.DeclarationNo }},
	{name: "declared_quantity", kind: kindFloat, num: func(r *CanonicalRecord) **float64 { return &r.DeclaredQuantity }},
}

// searchProjection lists the fields returned by record search.
var searchProjection = []string{
	FieldCustomsCode, "product_description", FieldDate, FieldImporter,
	FieldImporterCountry, FieldExporter, FieldExporterCountry, "quantity_unit",
	"quantity", "metric_tons", "amount_usd", "detailed_product_name",
	"bill_of_lading_no", "data_source", "declaration_no",
}

// IndexMapping returns the field-type mapping for the trade-records index.
func IndexMapping() map[string]any {
	properties := make(map[string]any, len(fieldSpecs)+2)
	for _, spec := range fieldSpecs {
		switch spec.kind {
		case kindCode, kindKeyword:
			properties[spec.name] = map[string]any{"type": "keyword"}
		case kindText:
			properties[spec.name] = map[string]any{"type": "text"}
		case kindDate:
			properties[spec.name] = map[string]any{"type": "date", "format": dateMappingFormats}
		case kindFloat:
			properties[spec.name] = map[string]any{"type": "float"}
		}
	}
	properties["created_at"] = map[string]any{"type": "date"}
	properties["updated_at"] = map[string]any{"type": "date"}

	return map[string]any{
		"mappings": map[string]any{
			"properties": properties,
		},
	}
}

// FieldNames returns the declared source column names in order.
func FieldNames() []string {
	names := make([]string, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		names[i] = spec.name
	}
	return names
}
