package tradedata

import "time"

// RawRow is one decoded spreadsheet row keyed by source column name. Values
// are untyped: strings for text cells, float64 for numeric cells, nil for
// genuinely missing values. A RawRow is consumed exactly once by the cleaner
// and never persisted.
type RawRow map[string]any

// CanonicalRecord is one normalized customs trade-flow record. Every declared
// field is always present: absent or malformed source cells become explicit
// nulls, never dropped keys. Pointer fields carry that nullability through
// JSON serialization (tags deliberately omit omitempty).
type CanonicalRecord struct {
	CustomsCode              *string  `json:"customs_code"`
	ProductDescription       *string  `json:"product_description"`
	Date                     *string  `json:"date"`
	Month                    *string  `json:"month"`
	Importer                 *string  `json:"importer"`
	ImporterCountry          *string  `json:"importer_country"`
	ExporterCountry          *string  `json:"exporter_country"`
	Exporter                 *string  `json:"exporter"`
	WeightUnit               *string  `json:"weight_unit"`
	QuantityUnit             *string  `json:"quantity_unit"`
	Quantity                 *float64 `json:"quantity"`
	GrossWeight              *float64 `json:"gross_weight"`
	NetWeight                *float64 `json:"net_weight"`
	MetricTons               *float64 `json:"metric_tons"`
	AmountUSD                *float64 `json:"amount_usd"`
	UnitPriceByWeight        *float64 `json:"unit_price_by_weight"`
	UnitPriceByQuantity      *float64 `json:"unit_price_by_quantity"`
	LocalCurrencyAmount      *float64 `json:"local_currency_amount"`
	ContractAmount           *float64 `json:"contract_amount"`
	Currency                 *string  `json:"currency"`
	TransactionMode          *string  `json:"transaction_mode"`
	DetailedProductName      *string  `json:"detailed_product_name"`
	ProductSpecBrand         *string  `json:"product_spec_brand"`
	LocalPort                *string  `json:"local_port"`
	ForeignPort              *string  `json:"foreign_port"`
	TransportMode            *string  `json:"transport_mode"`
	TradeMode                *string  `json:"trade_mode"`
	TransitCountry           *string  `json:"transit_country"`
	BillOfLadingNo           *string  `json:"bill_of_lading_no"`
	ProductDescriptionLocal  *string  `json:"product_description_local"`
	DetailedProductNameLocal *string  `json:"detailed_product_name_local"`
	ProductSpecBrandLocal    *string  `json:"product_spec_brand_local"`
	ImporterLocalName        *string  `json:"importer_local_name"`
	DataSource               *string  `json:"data_source"`
	ExporterLocalName        *string  `json:"exporter_local_name"`
	DeclarationNo            *string  `json:"declaration_no"`
	DeclaredQuantity         *float64 `json:"declared_quantity"`
}

// RecordInput is the caller-supplied payload for single-record creation and
// partial updates through the API.
type RecordInput struct {
	CustomsCode         *string  `json:"customs_code"`
	ProductDescription  *string  `json:"product_description"`
	Date                *string  `json:"date"`
	Importer            *string  `json:"importer"`
	ImporterCountry     *string  `json:"importer_country"`
	Exporter            *string  `json:"exporter"`
	ExporterCountry     *string  `json:"exporter_country"`
	QuantityUnit        *string  `json:"quantity_unit"`
	Quantity            *float64 `json:"quantity"`
	MetricTons          *float64 `json:"metric_tons"`
	AmountUSD           *float64 `json:"amount_usd"`
	DetailedProductName *string  `json:"detailed_product_name"`
	BillOfLadingNo      *string  `json:"bill_of_lading_no"`
	DataSource          *string  `json:"data_source"`
	DeclarationNo       *string  `json:"declaration_no"`
}

// document flattens the input into a store document, skipping unset fields so
// partial updates only touch what the caller supplied.
func (in *RecordInput) document(now time.Time, includeCreated bool) map[string]any {
	doc := map[string]any{}
	put := func(field string, v any) {
		doc[field] = v
	}
	if in.CustomsCode != nil {
		put(FieldCustomsCode, *in.CustomsCode)
	}
	if in.ProductDescription != nil {
		put("product_description", *in.ProductDescription)
	}
	if in.Date != nil {
		put(FieldDate, *in.Date)
	}
	if in.Importer != nil {
		put(FieldImporter, *in.Importer)
	}
	if in.ImporterCountry != nil {
		put(FieldImporterCountry, *in.ImporterCountry)
	}
	if in.Exporter != nil {
		put(FieldExporter, *in.Exporter)
	}
	if in.ExporterCountry != nil {
		put(FieldExporterCountry, *in.ExporterCountry)
	}
	if in.QuantityUnit != nil {
		put("quantity_unit", *in.QuantityUnit)
	}
	if in.Quantity != nil {
		put("quantity", *in.Quantity)
	}
	if in.MetricTons != nil {
		put("metric_tons", *in.MetricTons)
	}
	if in.AmountUSD != nil {
		put("amount_usd", *in.AmountUSD)
	}
	if in.DetailedProductName != nil {
		put("detailed_product_name", *in.DetailedProductName)
	}
	if in.BillOfLadingNo != nil {
		put("bill_of_lading_no", *in.BillOfLadingNo)
	}
	if in.DataSource != nil {
		put("data_source", *in.DataSource)
	}
	if in.DeclarationNo != nil {
		put("declaration_no", *in.DeclarationNo)
	}

	stamp := now.UTC().Format(time.RFC3339)
	if includeCreated {
		doc["created_at"] = stamp
	}
	doc["updated_at"] = stamp
	return doc
}
