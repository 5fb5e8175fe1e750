package models

// DataType is the type tag of an input or output port.
type DataType string

const (
	DataTypeInteger    DataType = "INT"
	DataTypeFloat      DataType = "FLOAT"
	DataTypeString     DataType = "STRING"
	DataTypeDataFrame  DataType = "DATAFRAME"
	DataTypeSeries     DataType = "SERIES"
	DataTypeBoolean    DataType = "BOOLEAN"
	DataTypeAny        DataType = "ANY"
	DataTypePlotlyJSON DataType = "PLOTLYJSON"
)

var dataTypeLabels = map[DataType]string{
	DataTypeInteger:    "Integer",
	DataTypeFloat:      "Float",
	DataTypeString:     "String",
	DataTypeDataFrame:  "Pandas DataFrame",
	DataTypeSeries:     "Pandas Series",
	DataTypeBoolean:    "Boolean",
	DataTypeAny:        "Any",
	DataTypePlotlyJSON: "PlotlyJson",
}

// Label returns the human readable name of the data type.
func (d DataType) Label() string {
	if label, ok := dataTypeLabels[d]; ok {
		return label
	}
	return string(d)
}

// Valid reports whether d is one of the known data types.
func (d DataType) Valid() bool {
	_, ok := dataTypeLabels[d]
	return ok
}
