// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package moves-upload replaces the contents of a set of Smartsheet (or Google Sheets) sheets with the actions,
proposals and gifts exported from the fundraising CRM as CSV files.

moves-upload can be used from the command line but is really intended to be run after each CRM export to keep the
moves management sheets for each location current.

moves-upload supports the following commands:

  - authorise, to authorise application access to the Smartsheet or Google Sheets account
  - upload, to transform a set of CSV exports and replace the actions, proposals and gifts sheets
  - clear, to delete the non-blank rows from a sheet
  - put, to replace the rows in a sheet with the contents of a CSV file
  - get, to download a sheet as a TSV file
  - update-date, to swap the 'last updated' date on the summary sheet
*/
package upload
