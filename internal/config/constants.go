package config

// Published mirrors of the agricultural statistics dataset, tried in order
// by the HTTP source provider. Branch names differ between forks, so both
// main and master layouts are listed.
var defaultDatasetURLs = []string{
	"https://raw.githubusercontent.com/lindiwemasuku89/Capstone-Project-Report/main/Data/data.csv",
	"https://raw.githubusercontent.com/lindiwemasuku89/Capstone-Project-Report/main/data.csv",
	"https://raw.githubusercontent.com/lindiwemasuku89/Capstone-Project-Report/main/dataset.csv",
	"https://raw.githubusercontent.com/lindiwemasuku89/Capstone-Project-Report/main/india_data.csv",
	"https://raw.githubusercontent.com/lindiwemasuku89/Capstone-Project-Report/master/data.csv",
	"https://raw.githubusercontent.com/lindiwemasuku89/Capstone-Project-Report/master/dataset.csv",
}

// DefaultDatasetURLs returns a copy of the built-in candidate URL list.
func DefaultDatasetURLs() []string {
	urls := make([]string, len(defaultDatasetURLs))
	copy(urls, defaultDatasetURLs)
	return urls
}

// Artifact file names written by the export stage.
const (
	FileDimStates    = "dim_states.csv"
	FileDimCrops     = "dim_crops.csv"
	FileDimSeasons   = "dim_seasons.csv"
	FileDimDates     = "dim_dates.csv"
	FileFact         = "fact_agriculture.csv"
	FileStateSummary = "state_summary.csv"
	FileCropSummary  = "crop_summary.csv"
	FileYearlyTrends = "yearly_trends.csv"
	FileCombined     = "agriculture_data_powerbi.csv"
	FileModelDoc     = "data_model_info.json"
	FileWorkbook     = "agriculture_data.xlsx"
	FileFactParquet  = "fact_agriculture.parquet"
	FileWarehouse    = "agriculture.db"
)
