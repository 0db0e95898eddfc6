package baseline

// Built-in baselines for the Health & Safety Information title, the one
// system title whose FST and COS can be redirected to a chain-loaded payload.
var defaultRecords = []Record{
	{
		TitleID: 0x000500101004E000,
		Name:    "Health and Safety Information [JPN]",
		FSTHash: "9D34DDD91604D781FDB0727AC75021833304964C",
		COSHash: "0",
	},
	{
		TitleID: 0x000500101004E100,
		Name:    "Health and Safety Information [USA]",
		FSTHash: "045734666A36C7EF0258A740855886EBDB20D59B",
		COSHash: "0",
	},
	{
		TitleID: 0x000500101004E200,
		Name:    "Health and Safety Information [EUR]",
		FSTHash: "130A76F8B36B36D43B88BBC74393D9AFD9CFD2A4",
		COSHash: "F6EBF7BC8AE3AF3BB8A42E0CF3FDA051278AEB03",
	},
}

var defaultColdboot = []Coldboot{
	{TitleID: 0x0005001010040000, Name: "Wii U Menu [JPN]", Hash: "2645065A42D18D390C78543E3C4FE7E1D1957A63", Menu: true},
	{TitleID: 0x0005001010040100, Name: "Wii U Menu [USA]", Hash: "124562D41A02C7112DDD5F9A8F0EE5DF97E23471", Menu: true},
	{TitleID: 0x0005001010040200, Name: "Wii U Menu [EUR]", Hash: "F06041A4E5B3F899E748F1BAEB524DE058809F1D", Menu: true},
	{TitleID: 0x000500101004E000, Name: "Health and Safety Information [JPN]", Hash: "066D672824128713F0A7D156142A68B998080148"},
	{TitleID: 0x000500101004E100, Name: "Health and Safety Information [USA]", Hash: "0EBCA1DFC0AB7A6A7FE8FB5EAF23179621B726A1"},
	{TitleID: 0x000500101004E200, Name: "Health and Safety Information [EUR]", Hash: "DE46EC3E9B823ABA6CB0638D0C4CDEEF9C793BDD"},
}

// Default returns a fresh registry holding the built-in records.
func Default() *Registry {
	r, err := NewRegistry(defaultRecords)
	if err != nil {
		panic(err) // built-in table is static
	}
	return r
}

// DefaultColdbootTable returns the built-in coldboot table.
func DefaultColdbootTable() ColdbootTable {
	t, err := NewColdbootTable(defaultColdboot)
	if err != nil {
		panic(err)
	}
	return t
}
