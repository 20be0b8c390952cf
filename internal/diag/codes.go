package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// malformed input from the parsing stage
	SynInfo             Code = 2000
	SynMalformedTree    Code = 2001
	SynUnknownNodeKind  Code = 2002
	SynMissingName      Code = 2003
	SynBadPosition      Code = 2004
	SynUnexpectedMember Code = 2005

	SemaInfo                                      Code = 3000
	SemaError                                     Code = 3001
	SemaDuplicateSymbol                           Code = 3002
	SemaScopeMismatch                             Code = 3003
	SemaShadowedName                              Code = 3004
	SemaUnresolvedReference                       Code = 3005
	SemaAmbiguousReference                        Code = 3006
	SemaUnresolvedType                            Code = 3007
	SemaNoMatchingConstructor                     Code = 3008
	SemaAmbiguousCall                             Code = 3009
	SemaTypeMismatch                              Code = 3010
	SemaReturnTypeMismatch                        Code = 3011
	SemaSpreadOfNullable                          Code = 3012
	SemaMissingDependencySuperclass               Code = 3013
	SemaMissingDependencySuperclassWarning        Code = 3014
	SemaMissingDependencySuperclassInTypeArgument Code = 3015
	SemaSecondaryCtorMustDelegate                 Code = 3016
	SemaValueClassCtorBody                        Code = 3017
	SemaDeprecatedUsage                           Code = 3018
	SemaDeprecatedUsageError                      Code = 3019
	SemaThisOutsideClass                          Code = 3020
	SemaUnresolvedImport                          Code = 3021
	SemaNullableArgument                          Code = 3022
	SemaSpreadOutsideArguments                    Code = 3023

	IOLoadFileError   Code = 4000
	IOLibraryError    Code = 4001
	IOIncompatibleABI Code = 4002

	ProjInfo             Code = 5000
	ProjInvalidConfig    Code = 5001
	ProjNoSources        Code = 5002
	ProjDuplicateLibrary Code = 5003
	ProjMissingLibrary   Code = 5004
	ProjLibraryCycle     Code = 5005

	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// compiler-internal consistency errors
	InternalError                Code = 9000
	InternalUnresolvedDelegation Code = 9001
	InternalDuplicateSynthesis   Code = 9002
	InternalMalformedIR          Code = 9003
	InternalStaleReference       Code = 9004
	InternalPanic                Code = 9005
)

var codeDescription = map[Code]string{
	UnknownCode:                            "Unknown error",
	SynInfo:                                "Syntax tree information",
	SynMalformedTree:                       "Malformed syntax tree",
	SynUnknownNodeKind:                     "Unknown syntax node kind",
	SynMissingName:                         "Declaration without a name",
	SynBadPosition:                         "Invalid source position",
	SynUnexpectedMember:                    "Member not allowed here",
	SemaInfo:                               "Semantic information",
	SemaError:                              "Semantic error",
	SemaDuplicateSymbol:                    "Duplicate symbol",
	SemaScopeMismatch:                      "Scope stack mismatch",
	SemaShadowedName:                       "Name shadowed",
	SemaUnresolvedReference:                "Unresolved reference",
	SemaAmbiguousReference:                 "Ambiguous reference",
	SemaUnresolvedType:                     "Unresolved type",
	SemaNoMatchingConstructor:              "No matching constructor",
	SemaAmbiguousCall:                      "Ambiguous call",
	SemaTypeMismatch:                       "Type mismatch",
	SemaReturnTypeMismatch:                 "Return type mismatch",
	SemaSpreadOfNullable:                   "Spread of nullable value",
	SemaMissingDependencySuperclass:        "Missing dependency superclass",
	SemaMissingDependencySuperclassWarning: "Missing dependency superclass (warning)",
	SemaMissingDependencySuperclassInTypeArgument: "Missing dependency superclass in type argument",
	SemaSecondaryCtorMustDelegate:                 "Secondary constructor must delegate",
	SemaValueClassCtorBody:                        "Value class secondary constructor with body",
	SemaDeprecatedUsage:                           "Usage of deprecated declaration",
	SemaDeprecatedUsageError:                      "Usage of deprecated declaration (error level)",
	SemaThisOutsideClass:                          "'this' outside of a class",
	SemaUnresolvedImport:                          "Unresolved import",
	SemaNullableArgument:                          "Nullable argument for non-null parameter",
	SemaSpreadOutsideArguments:                    "Spread operator outside of an argument list",
	IOLoadFileError:                               "I/O load file error",
	IOLibraryError:                                "Library read error",
	IOIncompatibleABI:                             "Incompatible library ABI version",
	ProjInfo:                                      "Project information",
	ProjInvalidConfig:                             "Invalid project configuration",
	ProjNoSources:                                 "No sources",
	ProjDuplicateLibrary:                          "Duplicate library on the library path",
	ProjMissingLibrary:                            "Library dependency is not on the library path",
	ProjLibraryCycle:                              "Library dependency cycle",
	ObsInfo:                                       "Observability information",
	ObsTimings:                                    "Pipeline timings",
	InternalError:                                 "Internal compiler error",
	InternalUnresolvedDelegation:                  "Cannot resolve enclosing instance for delegating call",
	InternalDuplicateSynthesis:                    "Duplicate synthesis for declaration",
	InternalMalformedIR:                           "Malformed IR",
	InternalStaleReference:                        "Stale symbol reference",
	InternalPanic:                                 "Internal compiler panic",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

// IsInternal reports whether the code belongs to the compiler-internal class.
func (c Code) IsInternal() bool {
	return c >= InternalError && c < 10000
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
