// Package protocol contains the typed request/response DTOs, method and
// stream name constants, and stream record parsers for the Cortex v2 API.
package protocol

// Methods enumerates every Cortex v2 JSON-RPC method name this client
// speaks. The built-in typed surface covers every one of these; callers may
// still issue arbitrary methods through the raw client's CallRaw escape
// hatch.
const (
	MethodGetCortexInfo = "getCortexInfo"

	MethodGetUserLogin     = "getUserLogin"
	MethodRequestAccess    = "requestAccess"
	MethodHasAccessRight   = "hasAccessRight"
	MethodAuthorize        = "authorize"
	MethodGenerateNewToken = "generateNewToken"
	MethodGetUserInfo      = "getUserInformation"
	MethodGetLicenseInfo   = "getLicenseInfo"

	MethodControlDevice           = "controlDevice"
	MethodQueryHeadsets           = "queryHeadsets"
	MethodUpdateHeadset           = "updateHeadset"
	MethodUpdateHeadsetCustomInfo = "updateHeadsetCustomInfo"
	MethodSyncWithHeadsetClock    = "syncWithHeadsetClock"
	MethodConfigMapping           = "configMapping"

	MethodCreateSession = "createSession"
	MethodUpdateSession = "updateSession"
	MethodQuerySessions = "querySessions"

	MethodSubscribe   = "subscribe"
	MethodUnsubscribe = "unsubscribe"

	MethodCreateRecord              = "createRecord"
	MethodStopRecord                = "stopRecord"
	MethodUpdateRecord              = "updateRecord"
	MethodDeleteRecord              = "deleteRecord"
	MethodExportRecord              = "exportRecord"
	MethodQueryRecords              = "queryRecords"
	MethodGetRecordInfos            = "getRecordInfos"
	MethodConfigOptOut              = "configOptOut"
	MethodRequestDownloadRecordData = "requestToDownloadRecordData"

	MethodInjectMarker = "injectMarker"
	MethodUpdateMarker = "updateMarker"

	MethodCreateSubject            = "createSubject"
	MethodUpdateSubject            = "updateSubject"
	MethodDeleteSubjects           = "deleteSubjects"
	MethodQuerySubjects            = "querySubjects"
	MethodGetDemographicAttributes = "getDemographicAttributes"

	MethodQueryProfile      = "queryProfile"
	MethodGetCurrentProfile = "getCurrentProfile"
	MethodSetupProfile      = "setupProfile"
	MethodLoadGuestProfile  = "loadGuestProfile"

	MethodTraining                       = "training"
	MethodGetDetectionInfo               = "getDetectionInfo"
	MethodGetTrainedSignatureActions     = "getTrainedSignatureActions"
	MethodGetTrainingTime                = "getTrainingTime"
	MethodFacialExpressionSignatureType  = "facialExpressionSignatureType"
	MethodFacialExpressionThreshold      = "facialExpressionThreshold"
	MethodMentalCommandActiveAction      = "mentalCommandActiveAction"
	MethodMentalCommandBrainMap          = "mentalCommandBrainMap"
	MethodMentalCommandTrainingThreshold = "mentalCommandTrainingThreshold"
	MethodMentalCommandActionSensitivity = "mentalCommandActionSensitivity"
)

// Well-known Cortex API JSON-RPC error codes.
const (
	ErrMethodNotFound       = -32601
	ErrNoHeadsetConnected   = -32001
	ErrInvalidLicenseID     = -32002
	ErrHeadsetUnavailable   = -32004
	ErrSessionAlreadyExists = -32005
	ErrSessionMustBeActive  = -32012
	ErrInvalidCortexToken   = -32014
	ErrTokenExpired         = -32015
	ErrInvalidStream        = -32016
	ErrInvalidClientCreds   = -32021
	ErrLicenseExpired       = -32024
	ErrUserNotLoggedIn      = -32033
	ErrUnpublishedApp       = -32142
	ErrHeadsetNotReady      = -32152
)

// Stream names for subscribe/unsubscribe, one per canonical Cortex data
// stream.
const (
	StreamEEG = "eeg"
	StreamMot = "mot"
	StreamPow = "pow"
	StreamMet = "met"
	StreamCom = "com"
	StreamFac = "fac"
	StreamDev = "dev"
	StreamEq  = "eq"
	StreamSys = "sys"
)

// AllStreams lists every canonical Cortex data stream name.
var AllStreams = []string{
	StreamEEG, StreamDev, StreamMot, StreamEq, StreamPow, StreamMet, StreamCom, StreamFac, StreamSys,
}
