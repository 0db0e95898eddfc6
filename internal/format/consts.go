// Package format houses low-level decoders for the Wii U filesystem table
// (title.fst). Everything is read at documented offsets from a byte slice;
// nothing is overlaid onto Go structs and every access is bounds-checked.
package format

// FSTMagic is the three-byte tag at the start of every FST.
// Layout:
//
//	0x00  'F' 'S' 'T'
var FSTMagic = []byte{'F', 'S', 'T'}

// ============================================================================
// FST Header
// ============================================================================
// All multi-byte fields are big-endian.
const (
	HeaderMagicOffset        = 0x00 // 3 bytes, "FST"
	HeaderMagicLen           = 3
	HeaderTypeOffset         = 0x03 // UCHAR
	HeaderOffsetFactorOffset = 0x04 // ULONG, multiplier for file offsets
	HeaderSectionCountOffset = 0x08 // ULONG
	HeaderHashDisabledOffset = 0x0C // UCHAR

	// HeaderSize is the fixed size of the header; the section array follows it.
	HeaderSize = 0x20
)

// ============================================================================
// Section entries
// ============================================================================
const (
	SectionAddressOffset  = 0x00 // ULONG, in volume blocks
	SectionSizeOffset     = 0x04 // ULONG, in volume blocks
	SectionOwnerIDOffset  = 0x08 // ULONGLONG, owning title id
	SectionGroupIDOffset  = 0x10 // ULONG
	SectionHashModeOffset = 0x14 // UCHAR

	SectionEntrySize = 0x20
)

// UsableHashMode is the hash mode of sections that may back every node once
// the table has been patched.
const UsableHashMode = 2

// ============================================================================
// Node entries
// ============================================================================
// The first node is the root directory; its last-entry field holds the total
// node count. Directory nodes store parent/last-entry, file nodes store
// offset/size in the same two words.
const (
	NodeTypeOffset       = 0x00 // UCHAR, bit 0 set for directories
	NodeNameOffsetOffset = 0x01 // 24-bit offset into the string table
	NodeWord1Offset      = 0x04 // ULONG, parent entry (dir) / file offset (file)
	NodeWord2Offset      = 0x08 // ULONG, last entry (dir) / file size (file)
	NodeFlagsOffset      = 0x0C // USHORT
	NodeSectionOffset    = 0x0E // USHORT, section affinity

	NodeEntrySize = 0x10

	NodeTypeDirectory = 0x01
)
