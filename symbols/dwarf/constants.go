// This file is part of Dwarfsym.
//
// Dwarfsym is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dwarfsym is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dwarfsym.  If not, see <https://www.gnu.org/licenses/>.

package dwarf

import "fmt"

// Tag is the node type of a debug information entry. Values from table 18,
// page 151 of "DWARF4 Standard".
type Tag uint32

// List of Tag values for DWARF versions 2 to 4.
const (
	TagArrayType           Tag = 0x01
	TagClassType           Tag = 0x02
	TagEntryPoint          Tag = 0x03
	TagEnumerationType     Tag = 0x04
	TagFormalParameter     Tag = 0x05
	TagImportedDeclaration Tag = 0x08
	TagLabel               Tag = 0x0a
	TagLexicalBlock        Tag = 0x0b
	TagMember              Tag = 0x0d
	TagPointerType         Tag = 0x0f
	TagReferenceType       Tag = 0x10
	TagCompileUnit         Tag = 0x11
	TagStringType          Tag = 0x12
	TagStructType          Tag = 0x13
	TagSubroutineType      Tag = 0x15
	TagTypedef             Tag = 0x16
	TagUnionType           Tag = 0x17
	TagUnspecifiedParams   Tag = 0x18
	TagVariant             Tag = 0x19
	TagCommonDwarfBlock    Tag = 0x1a
	TagCommonInclusion     Tag = 0x1b
	TagInheritance         Tag = 0x1c
	TagInlinedSubroutine   Tag = 0x1d
	TagModule              Tag = 0x1e
	TagPtrToMemberType     Tag = 0x1f
	TagSetType             Tag = 0x20
	TagSubrangeType        Tag = 0x21
	TagWithStmt            Tag = 0x22
	TagAccessDeclaration   Tag = 0x23
	TagBaseType            Tag = 0x24
	TagCatchDwarfBlock     Tag = 0x25
	TagConstType           Tag = 0x26
	TagConstant            Tag = 0x27
	TagEnumerator          Tag = 0x28
	TagFileType            Tag = 0x29
	TagFriend              Tag = 0x2a
	TagNamelist            Tag = 0x2b
	TagNamelistItem        Tag = 0x2c
	TagPackedType          Tag = 0x2d
	TagSubprogram          Tag = 0x2e
	TagTemplateTypeParam   Tag = 0x2f
	TagTemplateValueParam  Tag = 0x30
	TagThrownType          Tag = 0x31
	TagTryDwarfBlock       Tag = 0x32
	TagVariantPart         Tag = 0x33
	TagVariable            Tag = 0x34
	TagVolatileType        Tag = 0x35
	TagDwarfProcedure      Tag = 0x36
	TagRestrictType        Tag = 0x37
	TagInterfaceType       Tag = 0x38
	TagNamespace           Tag = 0x39
	TagImportedModule      Tag = 0x3a
	TagUnspecifiedType     Tag = 0x3b
	TagPartialUnit         Tag = 0x3c
	TagImportedUnit        Tag = 0x3d
	TagCondition           Tag = 0x3f
	TagSharedType          Tag = 0x40
	TagTypeUnit            Tag = 0x41
	TagRvalueReferenceType Tag = 0x42
	TagTemplateAlias       Tag = 0x43

	// the synthetic void symbol created for every compile unit carries a
	// tag outside of the DWARF numbering
	TagVoidType Tag = 0xff00
)

var tagNames = map[Tag]string{
	TagArrayType:         "ArrayType",
	TagClassType:         "ClassType",
	TagEnumerationType:   "EnumerationType",
	TagFormalParameter:   "FormalParameter",
	TagLexicalBlock:      "LexicalBlock",
	TagMember:            "Member",
	TagPointerType:       "PointerType",
	TagReferenceType:     "ReferenceType",
	TagCompileUnit:       "CompileUnit",
	TagStructType:        "StructType",
	TagSubroutineType:    "SubroutineType",
	TagTypedef:           "Typedef",
	TagUnionType:         "UnionType",
	TagInheritance:       "Inheritance",
	TagInlinedSubroutine: "InlinedSubroutine",
	TagSubrangeType:      "SubrangeType",
	TagBaseType:          "BaseType",
	TagConstType:         "ConstType",
	TagEnumerator:        "Enumerator",
	TagSubprogram:        "Subprogram",
	TagVariable:          "Variable",
	TagVolatileType:      "VolatileType",
	TagRestrictType:      "RestrictType",
	TagNamespace:         "Namespace",
	TagUnspecifiedType:   "UnspecifiedType",
	TagVoidType:          "VoidType",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Tag(%#x)", uint32(t))
}

// Attr identifies one attribute of a debug information entry. Values from
// table 20, page 155 of "DWARF4 Standard".
type Attr uint32

// List of Attr values for DWARF versions 2 to 4.
const (
	AttrSibling        Attr = 0x01
	AttrLocation       Attr = 0x02
	AttrName           Attr = 0x03
	AttrOrdering       Attr = 0x09
	AttrByteSize       Attr = 0x0b
	AttrBitOffset      Attr = 0x0c
	AttrBitSize        Attr = 0x0d
	AttrStmtList       Attr = 0x10
	AttrLowpc          Attr = 0x11
	AttrHighpc         Attr = 0x12
	AttrLanguage       Attr = 0x13
	AttrDiscr          Attr = 0x15
	AttrDiscrValue     Attr = 0x16
	AttrVisibility     Attr = 0x17
	AttrImport         Attr = 0x18
	AttrStringLength   Attr = 0x19
	AttrCommonRef      Attr = 0x1a
	AttrCompDir        Attr = 0x1b
	AttrConstValue     Attr = 0x1c
	AttrContainingType Attr = 0x1d
	AttrDefaultValue   Attr = 0x1e
	AttrInline         Attr = 0x20
	AttrIsOptional     Attr = 0x21
	AttrLowerBound     Attr = 0x22
	AttrProducer       Attr = 0x25
	AttrPrototyped     Attr = 0x27
	AttrReturnAddr     Attr = 0x2a
	AttrStartScope     Attr = 0x2c
	AttrStrideSize     Attr = 0x2e
	AttrUpperBound     Attr = 0x2f
	AttrAbstractOrigin Attr = 0x31
	AttrAccessibility  Attr = 0x32
	AttrAddrClass      Attr = 0x33
	AttrArtificial     Attr = 0x34
	AttrBaseTypes      Attr = 0x35
	AttrCalling        Attr = 0x36
	AttrCount          Attr = 0x37
	AttrDataMemberLoc  Attr = 0x38
	AttrDeclColumn     Attr = 0x39
	AttrDeclFile       Attr = 0x3a
	AttrDeclLine       Attr = 0x3b
	AttrDeclaration    Attr = 0x3c
	AttrDiscrList      Attr = 0x3d
	AttrEncoding       Attr = 0x3e
	AttrExternal       Attr = 0x3f
	AttrFrameBase      Attr = 0x40
	AttrFriend         Attr = 0x41
	AttrIdentifierCase Attr = 0x42
	AttrMacroInfo      Attr = 0x43
	AttrNamelistItem   Attr = 0x44
	AttrPriority       Attr = 0x45
	AttrSegment        Attr = 0x46
	AttrSpecification  Attr = 0x47
	AttrStaticLink     Attr = 0x48
	AttrType           Attr = 0x49
	AttrUseLocation    Attr = 0x4a
	AttrVarParam       Attr = 0x4b
	AttrVirtuality     Attr = 0x4c
	AttrVtableElemLoc  Attr = 0x4d
	AttrAllocated      Attr = 0x4e
	AttrAssociated     Attr = 0x4f
	AttrDataLocation   Attr = 0x50
	AttrStride         Attr = 0x51
	AttrEntrypc        Attr = 0x52
	AttrUseUTF8        Attr = 0x53
	AttrExtension      Attr = 0x54
	AttrRanges         Attr = 0x55
	AttrTrampoline     Attr = 0x56
	AttrCallColumn     Attr = 0x57
	AttrCallFile       Attr = 0x58
	AttrCallLine       Attr = 0x59
	AttrDescription    Attr = 0x5a
	AttrBinaryScale    Attr = 0x5b
	AttrDecimalScale   Attr = 0x5c
	AttrSmall          Attr = 0x5d
	AttrDecimalSign    Attr = 0x5e
	AttrDigitCount     Attr = 0x5f
	AttrPictureString  Attr = 0x60
	AttrMutable        Attr = 0x61
	AttrThreadsScaled  Attr = 0x62
	AttrExplicit       Attr = 0x63
	AttrObjectPointer  Attr = 0x64
	AttrEndianity      Attr = 0x65
	AttrElemental      Attr = 0x66
	AttrPure           Attr = 0x67
	AttrRecursive      Attr = 0x68
	AttrSignature      Attr = 0x69
	AttrMainSubprogram Attr = 0x6a
	AttrDataBitOffset  Attr = 0x6b
	AttrConstExpr      Attr = 0x6c
	AttrEnumClass      Attr = 0x6d
	AttrLinkageName    Attr = 0x6e
)

var attrNames = map[Attr]string{
	AttrSibling:        "Sibling",
	AttrLocation:       "Location",
	AttrName:           "Name",
	AttrByteSize:       "ByteSize",
	AttrStmtList:       "StmtList",
	AttrLowpc:          "Lowpc",
	AttrHighpc:         "Highpc",
	AttrLanguage:       "Language",
	AttrCompDir:        "CompDir",
	AttrConstValue:     "ConstValue",
	AttrUpperBound:     "UpperBound",
	AttrProducer:       "Producer",
	AttrAbstractOrigin: "AbstractOrigin",
	AttrCount:          "Count",
	AttrDataMemberLoc:  "DataMemberLoc",
	AttrDeclFile:       "DeclFile",
	AttrDeclLine:       "DeclLine",
	AttrDeclaration:    "Declaration",
	AttrEncoding:       "Encoding",
	AttrExternal:       "External",
	AttrFrameBase:      "FrameBase",
	AttrSpecification:  "Specification",
	AttrType:           "Type",
	AttrVirtuality:     "Virtuality",
	AttrRanges:         "Ranges",
	AttrLinkageName:    "LinkageName",
}

func (a Attr) String() string {
	if s, ok := attrNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Attr(%#x)", uint32(a))
}

// form describes how an attribute value is encoded. Values from table 21,
// page 160 of "DWARF4 Standard".
type form uint32

// List of form values for DWARF versions 2 to 4.
const (
	formAddr        form = 0x01
	formBlock2      form = 0x03
	formBlock4      form = 0x04
	formData2       form = 0x05
	formData4       form = 0x06
	formData8       form = 0x07
	formString      form = 0x08
	formBlock       form = 0x09
	formBlock1      form = 0x0a
	formData1       form = 0x0b
	formFlag        form = 0x0c
	formSdata       form = 0x0d
	formStrp        form = 0x0e
	formUdata       form = 0x0f
	formRefAddr     form = 0x10
	formRef1        form = 0x11
	formRef2        form = 0x12
	formRef4        form = 0x13
	formRef8        form = 0x14
	formRefUdata    form = 0x15
	formIndirect    form = 0x16
	formSecOffset   form = 0x17
	formExprloc     form = 0x18
	formFlagPresent form = 0x19
	formRefSig8     form = 0x20
)
