package testutil

// Fixture paths relative to the repository root.
const (
	FixtureFST       = "testdata/title.fst"
	FixtureCOS       = "testdata/cos1.xml"
	FixtureSystemXML = "testdata/system.xml"
)

// Recorded digests for the fixtures above.
const (
	// FixtureFSTRaw is the digest of title.fst as stored.
	FixtureFSTRaw = "8B1F16BEE64EBA90BFF43202283497AE5EDFA418"
	// FixtureFSTPatched is the digest after every node is moved to section 1.
	FixtureFSTPatched = "9E423EA0C6911B12EF36D40DFBB3D75F50255121"
	// FixtureCOSPatched is the digest of the patched, re-serialized cos1.xml.
	FixtureCOSPatched = "A8F69A1C508F37C272E6994B20F36EBF40D6731B"
	// FixtureSystemXMLHS is the digest of system.xml with its coldboot set to FixtureTitleID.
	FixtureSystemXMLHS = "E6BDBE0D508172EF7A4553E27242B450482A3428"
	// FixtureSystemXMLMenu is the digest of system.xml with its coldboot set to FixtureMenuID.
	FixtureSystemXMLMenu = "488332604477C4ED3D0B8878705201721EC4DAAE"
)

// Title ids the fixtures are built around.
const (
	FixtureTitleID uint64 = 0x000500101004E200
	FixtureMenuID  uint64 = 0x0005001010040200
)

// Payload returns a stand-in for the chain-loaded RPX. Its contents are
// never interpreted, only hashed and copied.
func Payload() []byte {
	return []byte("\x7fELF\x01\x02\x01\xcafe fixture payload\n")
}
