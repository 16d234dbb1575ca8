package Models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// FormFieldOrder is the fixed column order used by the export sheet. The
// names match the upstream crime-record schema exactly, including the odd
// casing and the double underscore in Shape__Area.
var FormFieldOrder = []string{
	"DR_NO", "Date_Rptd", "DATE_OCC", "TIME_OCC", "Unique_Identifier",
	"AREA_NAME", "Rpt_Dist_No", "VIN", "Crm", "Crm_Cd_Desc", "Mocodes",
	"Vict_Age", "Geolocation", "DEPARTMENT", "Premis_Cd", "Premis_Desc",
	"ARREST_KEY", "PD_DESC", "CCD_LONCOD", "Status_Desc", "LAW_CODE",
	"SubAgency", "Charge", "Race", "LOCATION", "SeqID", "LAT", "LON",
	"Point", "Shape__Area",
}

// CrimeRecordForm is the annotation form an agent fills per image. Every
// field is a mandatory string; validation happens at the HTTP boundary
// before anything is persisted.
type CrimeRecordForm struct {
	DRNo             string `json:"DR_NO" form:"DR_NO" validate:"required"`
	DateRptd         string `json:"Date_Rptd" form:"Date_Rptd" validate:"required"`
	DateOcc          string `json:"DATE_OCC" form:"DATE_OCC" validate:"required"`
	TimeOcc          string `json:"TIME_OCC" form:"TIME_OCC" validate:"required"`
	UniqueIdentifier string `json:"Unique_Identifier" form:"Unique_Identifier" validate:"required"`
	AreaName         string `json:"AREA_NAME" form:"AREA_NAME" validate:"required"`
	RptDistNo        string `json:"Rpt_Dist_No" form:"Rpt_Dist_No" validate:"required"`
	VIN              string `json:"VIN" form:"VIN" validate:"required"`
	Crm              string `json:"Crm" form:"Crm" validate:"required"`
	CrmCdDesc        string `json:"Crm_Cd_Desc" form:"Crm_Cd_Desc" validate:"required"`
	Mocodes          string `json:"Mocodes" form:"Mocodes" validate:"required"`
	VictAge          string `json:"Vict_Age" form:"Vict_Age" validate:"required"`
	Geolocation      string `json:"Geolocation" form:"Geolocation" validate:"required"`
	Department       string `json:"DEPARTMENT" form:"DEPARTMENT" validate:"required"`
	PremisCd         string `json:"Premis_Cd" form:"Premis_Cd" validate:"required"`
	PremisDesc       string `json:"Premis_Desc" form:"Premis_Desc" validate:"required"`
	ArrestKey        string `json:"ARREST_KEY" form:"ARREST_KEY" validate:"required"`
	PDDesc           string `json:"PD_DESC" form:"PD_DESC" validate:"required"`
	CCDLoncod        string `json:"CCD_LONCOD" form:"CCD_LONCOD" validate:"required"`
	StatusDesc       string `json:"Status_Desc" form:"Status_Desc" validate:"required"`
	LawCode          string `json:"LAW_CODE" form:"LAW_CODE" validate:"required"`
	SubAgency        string `json:"SubAgency" form:"SubAgency" validate:"required"`
	Charge           string `json:"Charge" form:"Charge" validate:"required"`
	Race             string `json:"Race" form:"Race" validate:"required"`
	Location         string `json:"LOCATION" form:"LOCATION" validate:"required"`
	SeqID            string `json:"SeqID" form:"SeqID" validate:"required"`
	Lat              string `json:"LAT" form:"LAT" validate:"required"`
	Lon              string `json:"LON" form:"LON" validate:"required"`
	Point            string `json:"Point" form:"Point" validate:"required"`
	ShapeArea        string `json:"Shape__Area" form:"Shape__Area" validate:"required"`
}

// Payload serializes the form plus the image it was filled against into the
// stored JSON blob. The image name rides inside the payload, not in its own
// column, so the export reads everything from one place.
func (f *CrimeRecordForm) Payload(imageName string) (datatypes.JSON, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["image_name"] = imageName
	blob, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(blob), nil
}
